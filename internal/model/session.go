package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SessionStatus 会话状态枚举
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"   // 已上班未下班
	SessionStatusClosed SessionStatus = "closed" // 已结算
)

// Lateness 迟到判定枚举
type Lateness string

const (
	LatenessOnTime Lateness = "on_time"
	LatenessLate   Lateness = "late"
)

// CloseReason 会话关闭原因枚举
type CloseReason string

const (
	CloseReasonPunch     CloseReason = "punch"      // 正常下班打卡
	CloseReasonAutoSweep CloseReason = "auto_sweep" // 清扫任务强制关闭
	CloseReasonManual    CloseReason = "manual"     // 后台手工补卡
)

// Int64List 以 JSONB 存储的 ID 数组
type Int64List []int64

func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Int64List) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for Int64List: %T", value)
	}
}

// AttendanceSession 一名员工在一个考勤日内的一段工作会话
// WorkDate 由 ClockIn 的本地日界决定，同一 (employee, work_date) 任意时刻最多一条 open 记录
// 允许一天多段会话（早退后再回来会开新会话）
type AttendanceSession struct {
	BaseModel
	PublicID       int64         `gorm:"uniqueIndex;not null" json:"public_id"`
	EmployeeID     int64         `gorm:"not null;index:idx_sessions_employee_date_status" json:"employee_id"`
	WorkDate       time.Time     `gorm:"type:date;not null;index:idx_sessions_employee_date_status" json:"work_date"`
	Status         SessionStatus `gorm:"type:varchar(16);not null;default:'open';index:idx_sessions_employee_date_status" json:"status"`
	ClockIn        time.Time     `gorm:"type:timestamptz;not null" json:"clock_in"`
	ClockOut       *time.Time    `gorm:"type:timestamptz" json:"clock_out,omitempty"`
	BreakMinutes   int           `gorm:"not null;default:0" json:"break_minutes"`
	TotalHours     float64       `gorm:"not null;default:0" json:"total_hours"`
	RegularHours   float64       `gorm:"not null;default:0" json:"regular_hours"`
	OvertimeHours  float64       `gorm:"not null;default:0" json:"overtime_hours"`
	Lateness       Lateness      `gorm:"type:varchar(16);not null;default:'on_time'" json:"lateness"`
	CloseReason    CloseReason   `gorm:"type:varchar(16);not null;default:''" json:"close_reason,omitempty"`
	Note           string        `gorm:"type:text;not null;default:''" json:"note,omitempty"`
	IsManualEntry  bool          `gorm:"not null;default:false" json:"is_manual_entry"`
	SourcePunchIDs Int64List     `gorm:"type:jsonb;default:'[]'" json:"source_punch_ids"`
}

// TableName 指定表名
func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

// IsOpen 会话是否仍在进行
func (s *AttendanceSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}
