package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"AreYouIn/internal/model"
)

// GORM 实现，db 由 storage/database 注入

type GormEmployeeRepo struct {
	db *gorm.DB
}

func NewGormEmployeeRepo(db *gorm.DB) *GormEmployeeRepo {
	return &GormEmployeeRepo{db: db}
}

func (r *GormEmployeeRepo) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).First(&employee, "public_id = ?", publicID).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepo) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).First(&employee, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

type GormShiftRepo struct {
	db *gorm.DB
}

func NewGormShiftRepo(db *gorm.DB) *GormShiftRepo {
	return &GormShiftRepo{db: db}
}

func (r *GormShiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	var shift model.Shift
	if err := r.db.WithContext(ctx).First(&shift, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

type GormPunchRepo struct {
	db *gorm.DB
}

func NewGormPunchRepo(db *gorm.DB) *GormPunchRepo {
	return &GormPunchRepo{db: db}
}

func (r *GormPunchRepo) Create(ctx context.Context, punch *model.Punch) error {
	return r.db.WithContext(ctx).Create(punch).Error
}

func (r *GormPunchRepo) LastAccepted(ctx context.Context, employeeID int64, punchType model.PunchType) (*model.Punch, error) {
	var punch model.Punch
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND type = ?", employeeID, punchType).
		Order("timestamp DESC").
		First(&punch).Error
	if err != nil {
		return nil, err
	}
	return &punch, nil
}

type GormSessionRepo struct {
	db *gorm.DB
}

func NewGormSessionRepo(db *gorm.DB) *GormSessionRepo {
	return &GormSessionRepo{db: db}
}

func (r *GormSessionRepo) Create(ctx context.Context, session *model.AttendanceSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormSessionRepo) FindOpen(ctx context.Context, employeeID int64, from, to time.Time) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ?", employeeID, model.SessionStatusOpen).
		Where("clock_in >= ? AND clock_in < ?", from, to).
		Order("clock_in DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepo) ListOpen(ctx context.Context) ([]*model.AttendanceSession, error) {
	var sessions []*model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("status = ?", model.SessionStatusOpen).
		Order("clock_in ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepo) ListByDay(ctx context.Context, employeeID int64, from, to time.Time) ([]*model.AttendanceSession, error) {
	var sessions []*model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("clock_in >= ? AND clock_in < ?", from, to).
		Order("clock_in ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// CloseIfOpen 乐观并发控制：WHERE status = 'open' 的条件更新
// RowsAffected == 0 说明别的写入者已经关了这条会话
func (r *GormSessionRepo) CloseIfOpen(ctx context.Context, session *model.AttendanceSession) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("id = ? AND status = ?", session.ID, model.SessionStatusOpen).
		Updates(map[string]interface{}{
			"status":           model.SessionStatusClosed,
			"clock_out":        session.ClockOut,
			"break_minutes":    session.BreakMinutes,
			"total_hours":      session.TotalHours,
			"regular_hours":    session.RegularHours,
			"overtime_hours":   session.OvertimeHours,
			"close_reason":     session.CloseReason,
			"note":             session.Note,
			"source_punch_ids": session.SourcePunchIDs,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormSessionRepo) AppendSourcePunch(ctx context.Context, sessionID int64, punchID int64) error {
	var session model.AttendanceSession
	if err := r.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		return err
	}
	session.SourcePunchIDs = append(session.SourcePunchIDs, punchID)
	return r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("id = ?", sessionID).
		Update("source_punch_ids", session.SourcePunchIDs).Error
}

type GormTerminalRepo struct {
	db *gorm.DB
}

func NewGormTerminalRepo(db *gorm.DB) *GormTerminalRepo {
	return &GormTerminalRepo{db: db}
}

func (r *GormTerminalRepo) GetBySN(ctx context.Context, sn string) (*model.Terminal, error) {
	var terminal model.Terminal
	if err := r.db.WithContext(ctx).First(&terminal, "sn = ?", sn).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

func (r *GormTerminalRepo) Create(ctx context.Context, terminal *model.Terminal) error {
	return r.db.WithContext(ctx).Create(terminal).Error
}

func (r *GormTerminalRepo) Touch(ctx context.Context, sn string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Terminal{}).
		Where("sn = ?", sn).
		Update("last_seen_at", at).Error
}

func (r *GormTerminalRepo) List(ctx context.Context) ([]*model.Terminal, error) {
	var terminals []*model.Terminal
	err := r.db.WithContext(ctx).Order("sn ASC").Find(&terminals).Error
	if err != nil {
		return nil, err
	}
	return terminals, nil
}
