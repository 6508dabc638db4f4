package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AreYouIn/internal/model"
)

func dayShift() *model.Shift {
	return &model.Shift{
		Name:               "早班",
		StartTime:          "09:00",
		EndTime:            "17:00",
		GraceMinutes:       15,
		OvertimeAfterHours: 8,
		WorkingDays:        "1,2,3,4,5",
	}
}

func nightShift() *model.Shift {
	return &model.Shift{
		Name:               "夜班",
		StartTime:          "22:00",
		EndTime:            "06:00",
		GraceMinutes:       10,
		OvertimeAfterHours: 8,
		WorkingDays:        "0,1,2,3,4,5,6",
		IsNightShift:       true,
	}
}

// 2026-09-07 是周一
func workday(hour, min, sec int) time.Time {
	return time.Date(2026, 9, 7, hour, min, sec, 0, time.UTC)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 8.5, Round2(8.5))
	assert.Equal(t, 8.17, Round2(8.166666))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, 0.0, Round2(0.004))
}

func TestComputeHoursRoundTrip(t *testing.T) {
	clockIn := workday(9, 0, 0)
	clockOut := workday(17, 30, 0)

	total, regular, overtime := ComputeHours(clockIn, clockOut, 0, dayShift(), 8)

	assert.Equal(t, 8.5, total)
	assert.Equal(t, 8.0, regular)
	assert.Equal(t, 0.5, overtime)
}

func TestComputeHoursWithBreak(t *testing.T) {
	clockIn := workday(9, 0, 0)
	clockOut := workday(17, 30, 0)

	total, regular, overtime := ComputeHours(clockIn, clockOut, 60, dayShift(), 8)

	assert.Equal(t, 7.5, total)
	assert.Equal(t, 7.5, regular)
	assert.Equal(t, 0.0, overtime)
}

func TestComputeHoursNoShiftUsesDefaultThreshold(t *testing.T) {
	clockIn := workday(8, 0, 0)
	clockOut := workday(18, 0, 0)

	total, regular, overtime := ComputeHours(clockIn, clockOut, 0, nil, 8)

	assert.Equal(t, 10.0, total)
	assert.Equal(t, 8.0, regular)
	assert.Equal(t, 2.0, overtime)
}

func TestComputeHoursNegativeClampedToZero(t *testing.T) {
	clockIn := workday(9, 0, 0)
	clockOut := workday(9, 10, 0)

	total, regular, overtime := ComputeHours(clockIn, clockOut, 30, dayShift(), 8)

	assert.Equal(t, 0.0, total)
	assert.Equal(t, 0.0, regular)
	assert.Equal(t, 0.0, overtime)
}

func TestClassifyLatenessBoundary(t *testing.T) {
	shift := dayShift()

	// 宽限边界：09:15:00 整点准时，09:15:01 迟到
	assert.Equal(t, model.LatenessOnTime, ClassifyLateness(workday(9, 15, 0), shift))
	assert.Equal(t, model.LatenessLate, ClassifyLateness(workday(9, 15, 1), shift))
	assert.Equal(t, model.LatenessOnTime, ClassifyLateness(workday(8, 59, 0), shift))
}

func TestClassifyLatenessNoShift(t *testing.T) {
	assert.Equal(t, model.LatenessOnTime, ClassifyLateness(workday(13, 0, 0), nil))
}

func TestClassifyLatenessNonWorkingDay(t *testing.T) {
	// 2026-09-06 是周日，不在早班工作日内
	sunday := time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, model.LatenessOnTime, ClassifyLateness(sunday, dayShift()))
}

func TestShiftTimeOnDay(t *testing.T) {
	got, err := ShiftTimeOnDay(workday(14, 30, 22), "09:00")
	require.NoError(t, err)
	assert.Equal(t, workday(9, 0, 0), got)

	_, err = ShiftTimeOnDay(workday(0, 0, 0), "2500")
	assert.Error(t, err)

	_, err = ShiftTimeOnDay(workday(0, 0, 0), "25:00")
	assert.Error(t, err)
}

func TestAutoClockoutDeadlineDayShift(t *testing.T) {
	deadline, ok := AutoClockoutDeadline(workday(9, 0, 0), dayShift(), 10*time.Minute)

	require.True(t, ok)
	assert.Equal(t, workday(17, 10, 0), deadline)
}

func TestAutoClockoutDeadlineNightShiftAddsDay(t *testing.T) {
	clockIn := workday(22, 5, 0)
	deadline, ok := AutoClockoutDeadline(clockIn, nightShift(), 10*time.Minute)

	require.True(t, ok)
	// 下班时间落在次日 06:00
	assert.Equal(t, time.Date(2026, 9, 8, 6, 10, 0, 0, time.UTC), deadline)
}

func TestAutoClockoutDeadlineNoShift(t *testing.T) {
	_, ok := AutoClockoutDeadline(workday(9, 0, 0), nil, 10*time.Minute)
	assert.False(t, ok)
}

func TestWorkingDaySetIgnoresGarbage(t *testing.T) {
	shift := &model.Shift{WorkingDays: "1, 2,x,9,,5"}
	set := shift.WorkingDaySet()

	assert.True(t, set[time.Monday])
	assert.True(t, set[time.Tuesday])
	assert.True(t, set[time.Friday])
	assert.False(t, set[time.Sunday])
	assert.Len(t, set, 3)
}
