package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AreYouIn/internal/model"
	"AreYouIn/internal/model/dto"
	"AreYouIn/pkg/errors"
)

type attendanceFixture struct {
	svc      *AttendanceService
	punches  *fakePunchRepo
	sessions *fakeSessionRepo
}

func newAttendanceFixture(now time.Time, employees ...model.Employee) *attendanceFixture {
	punches := newFakePunchRepo()
	sessions := newFakeSessionRepo()
	svc := NewAttendanceService(
		newFakeEmployeeRepo(employees...),
		newFakeShiftRepo(),
		punches,
		sessions,
		NoopNotifier{},
		fixedClock(now),
	)
	return &attendanceFixture{svc: svc, punches: punches, sessions: sessions}
}

func TestRecordKioskClockIn(t *testing.T) {
	f := newAttendanceFixture(workday(9, 0, 0), testEmployee())

	punch, session, err := f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{
		EmployeeID: "1042",
		Type:       "CLOCK_IN",
	})

	require.NoError(t, err)
	assert.Equal(t, model.PunchTypeClockIn, punch.Type)
	require.NotNil(t, session)
	assert.Equal(t, model.SessionStatusOpen, session.Status)
	assert.Equal(t, 1, f.punches.count())
}

func TestRecordKioskDoubleTapRejected(t *testing.T) {
	f := newAttendanceFixture(workday(9, 0, 0), testEmployee())

	_, _, err := f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{EmployeeID: "1042", Type: "CLOCK_IN"})
	require.NoError(t, err)

	_, _, err = f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{EmployeeID: "1042", Type: "CLOCK_IN"})

	assert.ErrorIs(t, err, errors.DuplicatePunch)
	assert.Equal(t, 1, f.punches.count()) // 被拒的打卡不落日志
}

func TestRecordKioskInactiveEmployeeRejectedBeforePersist(t *testing.T) {
	inactive := testEmployee()
	inactive.Status = model.EmployeeStatusSuspended
	f := newAttendanceFixture(workday(9, 0, 0), inactive)

	_, _, err := f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{EmployeeID: "1042", Type: "CLOCK_IN"})

	assert.ErrorIs(t, err, errors.EmployeeNotActive)
	assert.Equal(t, 0, f.punches.count())
}

func TestRecordKioskOrphanClockOutKeepsPunchLog(t *testing.T) {
	f := newAttendanceFixture(workday(17, 0, 0), testEmployee())

	punch, session, err := f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{EmployeeID: "1042", Type: "CLOCK_OUT"})

	assert.ErrorIs(t, err, errors.NoOpenSession)
	assert.NotNil(t, punch)
	assert.Nil(t, session)
	assert.Equal(t, 1, f.punches.count()) // 孤儿下班卡保留日志
}

func TestProcessUploadCountsAllLines(t *testing.T) {
	f := newAttendanceFixture(workday(10, 0, 0), testEmployee())

	// 5 行：2 行有效（上班+下班），1 行坏行，1 行 PIN=0，1 行未知工号
	body := "1042\t2026-09-07 09:00:00\t0\t1\n" +
		"1042\t2026-09-07 17:30:00\t1\t1\n" +
		"garbage\n" +
		"0\t2026-09-07 09:00:00\t0\n" +
		"5555\t2026-09-07 09:00:00\t0\n"

	stats := f.svc.ProcessUpload(context.Background(), "SN123", body)

	// 应答按收到的非空行数计数，与成败无关
	assert.Equal(t, 5, stats.Lines)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 2, f.punches.count())
}

func TestProcessUploadInactiveEmployeeSilentlySkipsReconcile(t *testing.T) {
	inactive := testEmployee()
	inactive.Status = model.EmployeeStatusInactive
	f := newAttendanceFixture(workday(10, 0, 0), inactive)

	stats := f.svc.ProcessUpload(context.Background(), "SN123", "1042\t2026-09-07 09:00:00\t0\n")

	// 打卡日志保留，会话不动，设备侧不报错
	assert.Equal(t, 1, stats.Lines)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 1, f.punches.count())
	open, err := f.sessions.ListOpen(context.Background())
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestProcessUploadDuplicateResendSkipped(t *testing.T) {
	f := newAttendanceFixture(workday(10, 0, 0), testEmployee())

	line := "1042\t2026-09-07 09:00:00\t0\t1\n"
	first := f.svc.ProcessUpload(context.Background(), "SN123", line)
	second := f.svc.ProcessUpload(context.Background(), "SN123", line)

	assert.Equal(t, 1, first.Processed)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 1, f.punches.count())
}

func TestProcessUploadEmptyBody(t *testing.T) {
	f := newAttendanceFixture(workday(10, 0, 0), testEmployee())

	stats := f.svc.ProcessUpload(context.Background(), "SN123", "\n\n")

	assert.Equal(t, 0, stats.Lines)
}

func TestManualEntryCreatesPunchesAndSession(t *testing.T) {
	f := newAttendanceFixture(workday(18, 0, 0), testEmployee())

	clockOut := workday(17, 0, 0)
	session, err := f.svc.ManualEntry(context.Background(), &dto.ManualEntryRequest{
		EmployeeID:   "1042",
		ClockIn:      workday(9, 0, 0),
		ClockOut:     &clockOut,
		BreakMinutes: 60,
		Note:         "忘带工牌",
	})

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusClosed, session.Status)
	assert.Equal(t, model.CloseReasonManual, session.CloseReason)
	assert.Equal(t, 7.0, session.TotalHours)
	assert.Equal(t, 2, f.punches.count()) // 上下班各补一条日志
	assert.Len(t, session.SourcePunchIDs, 2)
}

func TestManualEntryInactiveEmployeeLeavesNoPunches(t *testing.T) {
	resigned := testEmployee()
	resigned.Status = model.EmployeeStatusResigned
	f := newAttendanceFixture(workday(18, 0, 0), resigned)

	clockOut := workday(17, 0, 0)
	_, err := f.svc.ManualEntry(context.Background(), &dto.ManualEntryRequest{
		EmployeeID: "1042",
		ClockIn:    workday(9, 0, 0),
		ClockOut:   &clockOut,
	})

	assert.ErrorIs(t, err, errors.EmployeeNotActive)
	assert.Equal(t, 0, f.punches.count()) // 被拒的补卡不留孤儿打卡记录
}

func TestTodayStatus(t *testing.T) {
	f := newAttendanceFixture(workday(12, 0, 0), testEmployee())

	_, _, err := f.svc.RecordKiosk(context.Background(), &dto.RecordPunchRequest{EmployeeID: "1042", Type: "CLOCK_IN"})
	require.NoError(t, err)

	status, err := f.svc.TodayStatus(context.Background(), "1042")

	require.NoError(t, err)
	assert.Equal(t, "2026-09-07", status.Date)
	assert.Len(t, status.Sessions, 1)
	require.NotNil(t, status.Open)
	assert.Equal(t, "open", status.Open.Status)
}
