package model

import "time"

// PunchType 打卡事件类型枚举
type PunchType string

const (
	PunchTypeClockIn  PunchType = "CLOCK_IN"
	PunchTypeClockOut PunchType = "CLOCK_OUT"
)

// PunchSource 打卡来源枚举
type PunchSource string

const (
	PunchSourceKiosk    PunchSource = "kiosk"    // 自助机
	PunchSourceTerminal PunchSource = "terminal" // 考勤机推送协议
	PunchSourceManual   PunchSource = "manual"   // 后台手工补卡
)

// VerifyMethod 验证方式枚举
type VerifyMethod string

const (
	VerifyMethodFingerprint     VerifyMethod = "fingerprint"
	VerifyMethodCard            VerifyMethod = "card"
	VerifyMethodPassword        VerifyMethod = "password"
	VerifyMethodFace            VerifyMethod = "face"
	VerifyMethodPasswordFinger  VerifyMethod = "password+fingerprint"
	VerifyMethodFingerCard      VerifyMethod = "fingerprint+card"
	VerifyMethodPasswordCard    VerifyMethod = "password+card"
	VerifyMethodPasswordAll     VerifyMethod = "password+fingerprint+card"
	VerifyMethodManual          VerifyMethod = "manual"
	VerifyMethodUnknown         VerifyMethod = "unknown"
)

// Punch 原始打卡事件，只追加不修改
// Timestamp 是事件时间，ReceivedAt 是服务端接收时间，两者在设备离线重传时会差很远
type Punch struct {
	BaseModel
	PublicID     int64        `gorm:"uniqueIndex;not null" json:"public_id"`
	EmployeeID   int64        `gorm:"not null;index:idx_punches_employee_type_time" json:"employee_id"`
	Type         PunchType    `gorm:"type:varchar(16);not null;index:idx_punches_employee_type_time" json:"type"`
	Source       PunchSource  `gorm:"type:varchar(16);not null" json:"source"`
	VerifyMethod VerifyMethod `gorm:"type:varchar(32);not null;default:'unknown'" json:"verify_method"`
	TerminalSN   string       `gorm:"type:varchar(64);not null;default:''" json:"terminal_sn,omitempty"`
	Timestamp    time.Time    `gorm:"type:timestamptz;not null;index:idx_punches_employee_type_time" json:"timestamp"`
	ReceivedAt   time.Time    `gorm:"type:timestamptz;not null" json:"received_at"`
}

// TableName 指定表名
func (Punch) TableName() string {
	return "punches"
}
