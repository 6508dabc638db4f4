package service

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"AreYouIn/internal/model"
	"AreYouIn/internal/repository"
	"AreYouIn/pkg/errors"
	"AreYouIn/pkg/logger"
	"AreYouIn/pkg/snowflake"
)

// Reconciler 每员工每考勤日的会话状态机：NO_SESSION → OPEN → CLOSED
// CLOSED 对当天不是终态：早退后再打上班卡会开新会话，一天允许多段
type Reconciler struct {
	sessionRepo          repository.SessionRepo
	shiftRepo            repository.ShiftRepo
	defaultOvertimeAfter float64
}

func NewReconciler(sessionRepo repository.SessionRepo, shiftRepo repository.ShiftRepo, defaultOvertimeAfter float64) *Reconciler {
	return &Reconciler{
		sessionRepo:          sessionRepo,
		shiftRepo:            shiftRepo,
		defaultOvertimeAfter: defaultOvertimeAfter,
	}
}

// LoadShift 取员工班次，未排班或班次缺失都当作无班次处理
// 班次被 HR 删掉不应该让打卡失败
func (r *Reconciler) LoadShift(ctx context.Context, employee *model.Employee) *model.Shift {
	if employee.ShiftID == nil {
		return nil
	}
	shift, err := r.shiftRepo.GetByID(ctx, *employee.ShiftID)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			logger.Logger.Sugar().Warnf("加载班次失败: employee=%d shift=%d err=%v", employee.ID, *employee.ShiftID, err)
		}
		return nil
	}
	return shift
}

// Apply 把一条已接受的打卡推进状态机，punch 须已落库
// 返回本次涉及的会话；孤儿下班卡返回 NoOpenSession，打卡日志保留
func (r *Reconciler) Apply(ctx context.Context, punch *model.Punch, employee *model.Employee) (*model.AttendanceSession, error) {
	if !employee.IsActive() {
		return nil, errors.EmployeeNotActive
	}

	shift := r.LoadShift(ctx, employee)

	switch punch.Type {
	case model.PunchTypeClockIn:
		return r.applyClockIn(ctx, punch, employee, shift)
	case model.PunchTypeClockOut:
		return r.applyClockOut(ctx, punch, employee, shift)
	default:
		return nil, errors.InvalidPunch
	}
}

func (r *Reconciler) applyClockIn(ctx context.Context, punch *model.Punch, employee *model.Employee, shift *model.Shift) (*model.AttendanceSession, error) {
	dayStart := DayStart(punch.Timestamp)

	// 同日已有 open 会话时只追加来源打卡，不开第二条
	// 这是会话级幂等，和去重窗口无关：考勤机离线队列重放旧上班卡靠这里兜底
	existing, err := r.sessionRepo.FindOpen(ctx, employee.ID, dayStart, dayStart.Add(24*time.Hour))
	if err == nil {
		if err := r.sessionRepo.AppendSourcePunch(ctx, existing.ID, punch.ID); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	session := &model.AttendanceSession{
		PublicID:       publicID,
		EmployeeID:     employee.ID,
		WorkDate:       dayStart,
		Status:         model.SessionStatusOpen,
		ClockIn:        punch.Timestamp,
		Lateness:       ClassifyLateness(punch.Timestamp, shift),
		SourcePunchIDs: model.Int64List{punch.ID},
	}
	if err := r.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *Reconciler) applyClockOut(ctx context.Context, punch *model.Punch, employee *model.Employee, shift *model.Shift) (*model.AttendanceSession, error) {
	dayStart := DayStart(punch.Timestamp)
	from := dayStart
	if shift != nil && shift.IsNightShift {
		// 夜班的下班卡打在次日凌晨，open 会话在前一天
		from = dayStart.Add(-24 * time.Hour)
	}

	session, err := r.sessionRepo.FindOpen(ctx, employee.ID, from, dayStart.Add(24*time.Hour))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NoOpenSession
		}
		return nil, err
	}

	return r.closeSession(ctx, session, punch.Timestamp, session.BreakMinutes, model.CloseReasonPunch, "", shift, punch.ID)
}

// closeSession 结算并条件关闭，清扫任务和下班打卡共用这一条路径
func (r *Reconciler) closeSession(ctx context.Context, session *model.AttendanceSession, clockOut time.Time, breakMinutes int, reason model.CloseReason, note string, shift *model.Shift, punchID int64) (*model.AttendanceSession, error) {
	total, regular, overtime := ComputeHours(session.ClockIn, clockOut, breakMinutes, shift, r.defaultOvertimeAfter)

	session.Status = model.SessionStatusClosed
	session.ClockOut = &clockOut
	session.BreakMinutes = breakMinutes
	session.TotalHours = total
	session.RegularHours = regular
	session.OvertimeHours = overtime
	session.CloseReason = reason
	if note != "" {
		session.Note = note
	}
	if punchID != 0 {
		session.SourcePunchIDs = append(session.SourcePunchIDs, punchID)
	}

	won, err := r.sessionRepo.CloseIfOpen(ctx, session)
	if err != nil {
		return nil, err
	}
	if !won {
		// 条件更新没赢说明别的写入者已经关了，当孤儿下班卡处理
		return nil, errors.NoOpenSession
	}
	return session, nil
}

// CloseForSweep 清扫任务的关闭入口，走同一套结算逻辑
// 返回 (won, error)：没赢不算错，说明真实下班卡抢先到了
func (r *Reconciler) CloseForSweep(ctx context.Context, session *model.AttendanceSession, now time.Time, shift *model.Shift) (bool, error) {
	_, err := r.closeSession(ctx, session, now, session.BreakMinutes, model.CloseReasonAutoSweep, "automatically closed by sweeper", shift, 0)
	if err != nil {
		if stderrors.Is(err, errors.NoOpenSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ApplyManual 后台手工补卡，跳过去重但走同一套转移规则
// 只传 clockIn 时开会话，成对传时一次性写入已关闭会话
func (r *Reconciler) ApplyManual(ctx context.Context, employee *model.Employee, clockIn time.Time, clockOut *time.Time, breakMinutes int, note string, punchIDs []int64) (*model.AttendanceSession, error) {
	if !employee.IsActive() {
		return nil, errors.EmployeeNotActive
	}
	if clockOut != nil && !clockOut.After(clockIn) {
		return nil, errors.ManualRangeInvalid
	}

	shift := r.LoadShift(ctx, employee)
	dayStart := DayStart(clockIn)

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	session := &model.AttendanceSession{
		PublicID:       publicID,
		EmployeeID:     employee.ID,
		WorkDate:       dayStart,
		Status:         model.SessionStatusOpen,
		ClockIn:        clockIn,
		BreakMinutes:   breakMinutes,
		Lateness:       ClassifyLateness(clockIn, shift),
		Note:           note,
		IsManualEntry:  true,
		SourcePunchIDs: model.Int64List(punchIDs),
	}

	if clockOut != nil {
		total, regular, overtime := ComputeHours(clockIn, *clockOut, breakMinutes, shift, r.defaultOvertimeAfter)
		session.Status = model.SessionStatusClosed
		session.ClockOut = clockOut
		session.TotalHours = total
		session.RegularHours = regular
		session.OvertimeHours = overtime
		session.CloseReason = model.CloseReasonManual
	} else {
		// 开放式补卡沿用会话级幂等：当天已有 open 会话则追加来源打卡后返回
		existing, err := r.sessionRepo.FindOpen(ctx, employee.ID, dayStart, dayStart.Add(24*time.Hour))
		if err == nil {
			for _, id := range punchIDs {
				if err := r.sessionRepo.AppendSourcePunch(ctx, existing.ID, id); err != nil {
					return nil, err
				}
			}
			existing.SourcePunchIDs = append(existing.SourcePunchIDs, punchIDs...)
			return existing, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := r.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
