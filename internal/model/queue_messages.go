package model

// AttendanceEventEmployee 事件中携带的员工概要
type AttendanceEventEmployee struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// AttendanceEvent 考勤实时事件，广播给订阅方（大屏、主管通知等）
// 纯 fire-and-forget：投递失败不影响也不回滚会话核算
type AttendanceEvent struct {
	MessageID string                  `json:"message_id"` // 消息唯一ID，用于幂等性检查
	Type      string                  `json:"type"`       // CLOCK_IN / CLOCK_OUT / AUTO_CLOCKOUT
	Employee  AttendanceEventEmployee `json:"employee"`
	Timestamp string                  `json:"timestamp"`
	SessionID int64                   `json:"session_id,omitempty"`
}
