package repository

// 考勤核心的数据访问接口
// service 层只依赖接口，gorm 实现在同包的 *_repo.go，测试用内存假实现

import (
	"context"
	"time"

	"AreYouIn/internal/model"
)

// EmployeeRepo 员工目录，只读
type EmployeeRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
	GetByPublicID(ctx context.Context, publicID int64) (*model.Employee, error)
	GetByCode(ctx context.Context, code string) (*model.Employee, error)
}

// ShiftRepo 班次目录，只读
type ShiftRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Shift, error)
}

// PunchRepo 打卡事件日志，只追加
type PunchRepo interface {
	Create(ctx context.Context, punch *model.Punch) error
	// LastAccepted 返回该员工该类型最近一条已接受的打卡，没有则返回 gorm.ErrRecordNotFound
	// 去重窗口直接查日志而不是缓存，进程重启后判定依然正确
	LastAccepted(ctx context.Context, employeeID int64, punchType model.PunchType) (*model.Punch, error)
}

// SessionRepo 考勤会话
type SessionRepo interface {
	Create(ctx context.Context, session *model.AttendanceSession) error
	// FindOpen 返回 clockIn 落在 [from, to) 内最近的一条 open 会话
	FindOpen(ctx context.Context, employeeID int64, from, to time.Time) (*model.AttendanceSession, error)
	// ListOpen 返回所有 open 会话，清扫任务用
	ListOpen(ctx context.Context) ([]*model.AttendanceSession, error)
	// ListByDay 返回员工某天的全部会话
	ListByDay(ctx context.Context, employeeID int64, from, to time.Time) ([]*model.AttendanceSession, error)
	// CloseIfOpen 条件更新：仅当 status 仍为 open 时落库，返回是否赢得本次关闭
	// 清扫任务和真实下班打卡并发时，谁先提交谁生效，输家拿到 false 后放弃
	CloseIfOpen(ctx context.Context, session *model.AttendanceSession) (bool, error)
	// AppendSourcePunch 向已存在会话追加来源打卡 ID（重复上班打卡场景）
	AppendSourcePunch(ctx context.Context, sessionID int64, punchID int64) error
}

// TerminalRepo 考勤机档案
type TerminalRepo interface {
	GetBySN(ctx context.Context, sn string) (*model.Terminal, error)
	Create(ctx context.Context, terminal *model.Terminal) error
	Touch(ctx context.Context, sn string, at time.Time) error
	List(ctx context.Context) ([]*model.Terminal, error)
}
