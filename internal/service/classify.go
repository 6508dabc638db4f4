package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"AreYouIn/internal/model"
)

// 班次相关的时间运算全部集中在这里，纯函数，方便单测
// 所有跨日界的判断都以 DayStart 为准，避免各处散落的午夜回绕 bug

// ClassifyResult 会话结算结果
type ClassifyResult struct {
	Lateness      model.Lateness
	TotalHours    float64
	RegularHours  float64
	OvertimeHours float64
}

// Round2 保留两位小数，四舍五入
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// DayStart 返回 t 所在考勤日的零点（本地时区）
func DayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ShiftTimeOnDay 把 "HH:MM" 落到指定考勤日上
func ShiftTimeOnDay(day time.Time, hhmm string) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid shift time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid shift time %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid shift time %q", hhmm)
	}
	start := DayStart(day)
	return start.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute), nil
}

// ClassifyLateness 判定迟到
// 未排班员工不做迟到判定，工作日之外打卡也不算迟到
// 边界：clockIn 恰好等于 shiftStart+grace 仍算准时
func ClassifyLateness(clockIn time.Time, shift *model.Shift) model.Lateness {
	if shift == nil {
		return model.LatenessOnTime
	}
	if !IsWorkingDay(clockIn, shift) {
		return model.LatenessOnTime
	}
	start, err := ShiftTimeOnDay(clockIn, shift.StartTime)
	if err != nil {
		return model.LatenessOnTime
	}
	deadline := start.Add(time.Duration(shift.GraceMinutes) * time.Minute)
	if clockIn.After(deadline) {
		return model.LatenessLate
	}
	return model.LatenessOnTime
}

// IsWorkingDay 判断 clockIn 所在的日历日是否为该班次工作日
// 夜班也按 clockIn 的日历日判定，而不是班次名义上的起始日
func IsWorkingDay(clockIn time.Time, shift *model.Shift) bool {
	return shift.WorkingDaySet()[clockIn.Weekday()]
}

// ComputeHours 结算工时：总工时扣除休息，超过阈值的部分计加班
// shift 为空时阈值取 defaultOvertimeAfter
func ComputeHours(clockIn, clockOut time.Time, breakMinutes int, shift *model.Shift, defaultOvertimeAfter float64) (total, regular, overtime float64) {
	worked := clockOut.Sub(clockIn).Hours() - float64(breakMinutes)/60
	if worked < 0 {
		worked = 0
	}
	threshold := defaultOvertimeAfter
	if shift != nil {
		threshold = shift.OvertimeAfterHours
	}
	total = Round2(worked)
	regular = Round2(math.Min(worked, threshold))
	overtime = Round2(math.Max(0, worked-threshold))
	return total, regular, overtime
}

// Classify 结算一条会话：开着的会话只判迟到，关了的会话同时结算工时
func Classify(clockIn time.Time, clockOut *time.Time, breakMinutes int, shift *model.Shift, defaultOvertimeAfter float64) ClassifyResult {
	result := ClassifyResult{
		Lateness: ClassifyLateness(clockIn, shift),
	}
	if clockOut != nil {
		result.TotalHours, result.RegularHours, result.OvertimeHours =
			ComputeHours(clockIn, *clockOut, breakMinutes, shift, defaultOvertimeAfter)
	}
	return result
}

// AutoClockoutDeadline 计算自动关闭截止时间：班次下班时间 + 宽限
// 夜班的下班时间在次日，+24h
// 未排班员工没有截止时间，返回 false，清扫任务永不关闭
func AutoClockoutDeadline(clockIn time.Time, shift *model.Shift, grace time.Duration) (time.Time, bool) {
	if shift == nil {
		return time.Time{}, false
	}
	end, err := ShiftTimeOnDay(clockIn, shift.EndTime)
	if err != nil {
		return time.Time{}, false
	}
	if shift.IsNightShift {
		end = end.Add(24 * time.Hour)
	}
	return end.Add(grace), true
}
