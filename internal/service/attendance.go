package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"AreYouIn/config"
	"AreYouIn/internal/model"
	"AreYouIn/internal/model/dto"
	"AreYouIn/internal/repository"
	"AreYouIn/pkg/errors"
	"AreYouIn/pkg/logger"
	"AreYouIn/pkg/metrics"
	"AreYouIn/pkg/snowflake"
)

// AttendanceService 打卡处理编排：规范化 → 去重 → 落日志 → 状态机 → 广播
type AttendanceService struct {
	normalizer *Normalizer
	dedup      *DedupGuard
	reconciler *Reconciler
	punchRepo  repository.PunchRepo
	notifier   Notifier
	now        func() time.Time
}

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

// Attendance 进程级单例，依赖从 storage 注入
func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceService = NewAttendanceService(
			repository.DefaultEmployeeRepo(),
			repository.DefaultShiftRepo(),
			repository.DefaultPunchRepo(),
			repository.DefaultSessionRepo(),
			DefaultNotifier(),
			time.Now,
		)
	})
	return attendanceService
}

// NewAttendanceService 测试和清扫任务用的显式构造
func NewAttendanceService(
	employeeRepo repository.EmployeeRepo,
	shiftRepo repository.ShiftRepo,
	punchRepo repository.PunchRepo,
	sessionRepo repository.SessionRepo,
	notifier Notifier,
	now func() time.Time,
) *AttendanceService {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &AttendanceService{
		normalizer: NewNormalizer(employeeRepo, now),
		dedup: NewDedupGuard(
			punchRepo,
			time.Duration(config.Cfg.DedupWindowKioskSeconds)*time.Second,
			time.Duration(config.Cfg.DedupWindowTerminalSeconds)*time.Second,
		),
		reconciler: NewReconciler(sessionRepo, shiftRepo, config.Cfg.DefaultOvertimeAfterHours),
		punchRepo:  punchRepo,
		notifier:   notifier,
		now:        now,
	}
}

// Reconciler 暴露给清扫任务复用结算逻辑
func (s *AttendanceService) Reconciler() *Reconciler {
	return s.reconciler
}

// RecordKiosk 自助机打卡
// 在职校验在落库之前：被拒的打卡直接反馈给用户，不留日志
func (s *AttendanceService) RecordKiosk(ctx context.Context, req *dto.RecordPunchRequest) (*model.Punch, *model.AttendanceSession, error) {
	np, err := s.normalizer.NormalizeKiosk(ctx, req.EmployeeID, req.Type, req.Timestamp, req.VerificationMethod, model.PunchSourceKiosk, req.TerminalID)
	if err != nil {
		metrics.RecordPunchRejected(ctx, string(model.PunchSourceKiosk), rejectReason(err))
		return nil, nil, err
	}

	if !np.Employee.IsActive() {
		metrics.RecordPunchRejected(ctx, string(model.PunchSourceKiosk), errors.EmployeeNotActive.Code)
		return nil, nil, errors.EmployeeNotActive
	}

	if err := s.dedup.Check(ctx, np.Punch); err != nil {
		metrics.RecordPunchRejected(ctx, string(model.PunchSourceKiosk), rejectReason(err))
		return nil, nil, err
	}

	if err := s.punchRepo.Create(ctx, np.Punch); err != nil {
		return nil, nil, err
	}
	metrics.RecordPunchAccepted(ctx, string(model.PunchSourceKiosk), string(np.Punch.Type))

	session, err := s.reconciler.Apply(ctx, np.Punch, np.Employee)
	if err != nil {
		// 孤儿下班卡：打卡日志保留，错误原样上抛给自助机
		return np.Punch, nil, err
	}
	s.recordSessionMetrics(ctx, np.Punch.Type, session)
	s.notifyAsync(np.Punch.Type, np.Employee, np.Punch.Timestamp, session)

	return np.Punch, session, nil
}

// UploadStats 一次考勤机批量上传的处理统计
type UploadStats struct {
	Lines     int // 非空行数，设备应答按它计数
	Processed int
	Skipped   int
}

// ProcessUpload 处理考勤机 ATTLOG 批量上传
// 坏行跳过并计数，绝不中断批次；返回值用于构造 "OK: N" 应答
func (s *AttendanceService) ProcessUpload(ctx context.Context, terminalSN, body string) *UploadStats {
	loc := time.FixedZone("terminal", config.Cfg.TerminalTimeZone*3600)
	stats := &UploadStats{}

	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		stats.Lines++

		np, err := s.normalizer.NormalizeTerminalLine(ctx, line, terminalSN, loc)
		if err != nil {
			stats.Skipped++
			metrics.RecordPunchRejected(ctx, string(model.PunchSourceTerminal), rejectReason(err))
			logger.Logger.Warn("跳过无法解析的考勤机记录",
				zap.String("sn", terminalSN),
				zap.String("reason", rejectReason(err)),
			)
			continue
		}

		if err := s.dedup.Check(ctx, np.Punch); err != nil {
			stats.Skipped++
			metrics.RecordPunchRejected(ctx, string(model.PunchSourceTerminal), rejectReason(err))
			continue
		}

		if err := s.punchRepo.Create(ctx, np.Punch); err != nil {
			stats.Skipped++
			logger.Logger.Error("考勤机打卡落库失败",
				zap.String("sn", terminalSN),
				zap.Error(err),
			)
			continue
		}
		metrics.RecordPunchAccepted(ctx, string(model.PunchSourceTerminal), string(np.Punch.Type))
		stats.Processed++

		// 非在职员工的打卡保留日志但不进状态机，设备侧静默
		session, err := s.reconciler.Apply(ctx, np.Punch, np.Employee)
		if err != nil {
			if !isBusinessError(err) {
				logger.Logger.Error("考勤机打卡核算失败",
					zap.String("sn", terminalSN),
					zap.Int64("employee_id", np.Employee.ID),
					zap.Error(err),
				)
			}
			continue
		}
		s.recordSessionMetrics(ctx, np.Punch.Type, session)
		s.notifyAsync(np.Punch.Type, np.Employee, np.Punch.Timestamp, session)
	}

	metrics.RecordTerminalUpload(ctx, terminalSN, stats.Processed, stats.Skipped)
	return stats
}

// ManualEntry 后台手工补卡，跳过去重
func (s *AttendanceService) ManualEntry(ctx context.Context, req *dto.ManualEntryRequest) (*model.AttendanceSession, error) {
	employee, err := s.normalizer.ResolveEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	// 在职校验要在补卡落库之前，不给非在职员工留孤儿打卡记录
	if !employee.IsActive() {
		return nil, errors.EmployeeNotActive
	}

	punchIDs := make([]int64, 0, 2)
	clockInPunch, err := s.createManualPunch(ctx, employee, model.PunchTypeClockIn, req.ClockIn)
	if err != nil {
		return nil, err
	}
	punchIDs = append(punchIDs, clockInPunch.ID)
	if req.ClockOut != nil {
		clockOutPunch, err := s.createManualPunch(ctx, employee, model.PunchTypeClockOut, *req.ClockOut)
		if err != nil {
			return nil, err
		}
		punchIDs = append(punchIDs, clockOutPunch.ID)
	}

	session, err := s.reconciler.ApplyManual(ctx, employee, req.ClockIn, req.ClockOut, req.BreakMinutes, req.Note, punchIDs)
	if err != nil {
		return nil, err
	}
	s.recordSessionMetrics(ctx, model.PunchTypeClockIn, session)
	return session, nil
}

func (s *AttendanceService) createManualPunch(ctx context.Context, employee *model.Employee, punchType model.PunchType, ts time.Time) (*model.Punch, error) {
	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}
	punch := &model.Punch{
		PublicID:     publicID,
		EmployeeID:   employee.ID,
		Type:         punchType,
		Source:       model.PunchSourceManual,
		VerifyMethod: model.VerifyMethodManual,
		Timestamp:    ts,
		ReceivedAt:   s.now(),
	}
	if err := s.punchRepo.Create(ctx, punch); err != nil {
		return nil, err
	}
	metrics.RecordPunchAccepted(ctx, string(model.PunchSourceManual), string(punchType))
	return punch, nil
}

// TodayStatus 员工当日考勤状态，自助机登录时加载
func (s *AttendanceService) TodayStatus(ctx context.Context, employeeRef string) (*dto.TodayStatusData, error) {
	employee, err := s.normalizer.ResolveEmployee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}

	dayStart := DayStart(s.now())
	sessions, err := s.reconciler.sessionRepo.ListByDay(ctx, employee.ID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	data := &dto.TodayStatusData{
		Date:     dayStart.Format("2006-01-02"),
		Sessions: make([]dto.SessionData, 0, len(sessions)),
	}
	for _, session := range sessions {
		item := ToSessionData(session)
		data.Sessions = append(data.Sessions, item)
		if session.IsOpen() {
			open := item
			data.Open = &open
		}
	}
	return data, nil
}

// ToSessionData 会话模型转响应数据
func ToSessionData(session *model.AttendanceSession) dto.SessionData {
	return dto.SessionData{
		ID:            strconv.FormatInt(session.PublicID, 10),
		EmployeeID:    strconv.FormatInt(session.EmployeeID, 10),
		WorkDate:      session.WorkDate.Format("2006-01-02"),
		Status:        string(session.Status),
		ClockIn:       session.ClockIn,
		ClockOut:      session.ClockOut,
		TotalHours:    session.TotalHours,
		RegularHours:  session.RegularHours,
		OvertimeHours: session.OvertimeHours,
		Lateness:      string(session.Lateness),
		CloseReason:   string(session.CloseReason),
		IsManualEntry: session.IsManualEntry,
	}
}

// notifyAsync 异步广播考勤事件，带超时，失败只记日志
func (s *AttendanceService) notifyAsync(punchType model.PunchType, employee *model.Employee, ts time.Time, session *model.AttendanceSession) {
	messageID, err := snowflake.NextID()
	if err != nil {
		logger.Logger.Warn("生成事件 ID 失败", zap.Error(err))
		return
	}

	event := &model.AttendanceEvent{
		MessageID: "att_event_" + strconv.FormatInt(messageID, 10),
		Type:      string(punchType),
		Employee: model.AttendanceEventEmployee{
			ID:         employee.PublicID,
			Name:       employee.Name,
			Department: employee.Department,
		},
		Timestamp: ts.Format(time.RFC3339),
	}
	if session != nil {
		event.SessionID = session.PublicID
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.Publish(ctx, event); err != nil {
			logger.Logger.Warn("考勤事件广播失败",
				zap.String("message_id", event.MessageID),
				zap.Error(err),
			)
		}
	}()
}

func (s *AttendanceService) recordSessionMetrics(ctx context.Context, punchType model.PunchType, session *model.AttendanceSession) {
	if session == nil {
		return
	}
	if punchType == model.PunchTypeClockIn && session.IsOpen() {
		metrics.RecordSessionOpened(ctx)
	}
	if !session.IsOpen() {
		metrics.RecordSessionClosed(ctx, string(session.CloseReason))
	}
}

// rejectReason 打点用的拒绝原因标签
func rejectReason(err error) string {
	var def errors.Definition
	if stderrors.As(err, &def) {
		return def.Code
	}
	return "INTERNAL"
}

// isBusinessError 是否业务语义错误（而非存储故障）
func isBusinessError(err error) bool {
	var def errors.Definition
	return stderrors.As(err, &def)
}
