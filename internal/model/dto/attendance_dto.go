package dto

import "time"

// ========== 打卡相关 DTO ==========

// RecordPunchRequest 自助机打卡请求
// EmployeeID 可以是内部 ID 或工号，服务端先按 ID 再按工号解析
type RecordPunchRequest struct {
	EmployeeID         string     `json:"employeeId"`
	Type               string     `json:"type"`
	Timestamp          *time.Time `json:"timestamp,omitempty"` // 缺省取服务端接收时间
	VerificationMethod string     `json:"verificationMethod,omitempty"`
	TerminalID         string     `json:"terminalId,omitempty"`
}

// PunchData 打卡成功响应数据
type PunchData struct {
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// ManualEntryRequest 后台手工补卡请求，跳过去重
type ManualEntryRequest struct {
	EmployeeID   string     `json:"employeeId"`
	ClockIn      time.Time  `json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut,omitempty"`
	BreakMinutes int        `json:"breakMinutes,omitempty"`
	Note         string     `json:"note,omitempty"`
}

// SessionData 会话数据
type SessionData struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	WorkDate      string     `json:"work_date"`
	Status        string     `json:"status"`
	ClockIn       time.Time  `json:"clock_in"`
	ClockOut      *time.Time `json:"clock_out,omitempty"`
	TotalHours    float64    `json:"total_hours"`
	RegularHours  float64    `json:"regular_hours"`
	OvertimeHours float64    `json:"overtime_hours"`
	Lateness      string     `json:"lateness"`
	CloseReason   string     `json:"close_reason,omitempty"`
	IsManualEntry bool       `json:"is_manual_entry"`
}

// TodayStatusData 员工当日考勤状态，自助机登录加载时查询
type TodayStatusData struct {
	Date     string        `json:"date"`
	Sessions []SessionData `json:"sessions"`
	Open     *SessionData  `json:"open,omitempty"`
}

// SweepResultData 清扫触发结果
type SweepResultData struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Scanned   int       `json:"scanned"`
	Closed    int       `json:"closed"`
	Failed    int       `json:"failed"`
}

// TerminalItem 考勤机列表项
type TerminalItem struct {
	SN             string     `json:"sn"`
	Name           string     `json:"name"`
	Online         bool       `json:"online"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	UploadedToday  int64      `json:"uploaded_today"`
	SelfRegistered bool       `json:"self_registered"`
}
