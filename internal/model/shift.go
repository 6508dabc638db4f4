package model

import (
	"strconv"
	"strings"
	"time"
)

// Shift 班次定义，考勤核心只读
// StartTime/EndTime 为 "HH:MM"，夜班的 EndTime 早于 StartTime（跨天）
type Shift struct {
	BaseModel
	Name               string  `gorm:"type:varchar(64);not null" json:"name"`
	StartTime          string  `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime            string  `gorm:"type:varchar(5);not null" json:"end_time"`
	GraceMinutes       int     `gorm:"not null;default:0" json:"grace_minutes"`
	OvertimeAfterHours float64 `gorm:"not null;default:8" json:"overtime_after_hours"`
	WorkingDays        string  `gorm:"type:varchar(32);not null;default:'1,2,3,4,5'" json:"working_days"` // 逗号分隔的 weekday（0=周日）
	IsNightShift       bool    `gorm:"not null;default:false" json:"is_night_shift"`
}

// TableName 指定表名
func (Shift) TableName() string {
	return "shifts"
}

// WorkingDaySet 解析 WorkingDays 字段，非法片段忽略
func (s *Shift) WorkingDaySet() map[time.Weekday]bool {
	set := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s.WorkingDays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		set[time.Weekday(n)] = true
	}
	return set
}
