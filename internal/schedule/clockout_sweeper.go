package schedule

// 自动关账清扫：周期扫描 open 会话，超过班次下班时间 + 宽限仍未打下班卡的强制关闭
// 关闭走和真实下班卡同一条结算路径，靠条件更新保证并发安全

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AreYouIn/config"
	"AreYouIn/internal/model"
	"AreYouIn/internal/model/dto"
	"AreYouIn/internal/repository"
	"AreYouIn/internal/service"
	"AreYouIn/pkg/logger"
	"AreYouIn/pkg/metrics"
	"AreYouIn/pkg/snowflake"
)

var (
	sweeperOnce sync.Once
	sweeperInst *ClockoutSweeper
)

type ClockoutSweeper struct {
	logger       *zap.Logger
	sessionRepo  repository.SessionRepo
	employeeRepo repository.EmployeeRepo
	reconciler   *service.Reconciler
	notifier     service.Notifier
	now          func() time.Time

	running   bool
	runningMu sync.Mutex
}

func Sweeper() *ClockoutSweeper {
	sweeperOnce.Do(func() {
		sweeperInst = NewClockoutSweeper(
			repository.DefaultSessionRepo(),
			repository.DefaultEmployeeRepo(),
			service.Attendance().Reconciler(),
			service.DefaultNotifier(),
			time.Now,
		)
	})
	return sweeperInst
}

func NewClockoutSweeper(
	sessionRepo repository.SessionRepo,
	employeeRepo repository.EmployeeRepo,
	reconciler *service.Reconciler,
	notifier service.Notifier,
	now func() time.Time,
) *ClockoutSweeper {
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = service.NoopNotifier{}
	}
	return &ClockoutSweeper{
		logger:       logger.Logger,
		sessionRepo:  sessionRepo,
		employeeRepo: employeeRepo,
		reconciler:   reconciler,
		notifier:     notifier,
		now:          now,
	}
}

// Run 按固定间隔执行清扫直到 ctx 结束
func (s *ClockoutSweeper) Run(ctx context.Context) {
	interval := time.Duration(config.Cfg.SweepIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Clockout sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Clockout sweeper stopped")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, interval)
			if _, err := s.RunOnce(runCtx); err != nil {
				s.logger.Error("Sweep run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunOnce 执行一轮清扫，管理端手动触发也走这里
// 单轮内逐会话处理，单条失败只计数不中断
func (s *ClockoutSweeper) RunOnce(ctx context.Context) (*dto.SweepResultData, error) {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		s.logger.Info("Sweep already running, skipping")
		return &dto.SweepResultData{}, nil
	}
	s.running = true
	s.runningMu.Unlock()

	defer func() {
		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()
	}()

	startTime := s.now()
	runID := uuid.NewString()
	grace := time.Duration(config.Cfg.SweepGraceMinutes) * time.Minute

	result := &dto.SweepResultData{RunID: runID, StartedAt: startTime}

	sessions, err := s.sessionRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	result.Scanned = len(sessions)

	for _, session := range sessions {
		closed, err := s.sweepSession(ctx, session, startTime, grace)
		if err != nil {
			result.Failed++
			s.logger.Error("Failed to sweep session",
				zap.String("run_id", runID),
				zap.Int64("session_id", session.ID),
				zap.Error(err),
			)
			continue
		}
		if closed {
			result.Closed++
		}
	}

	duration := time.Since(startTime)
	metrics.RecordSweepRun(ctx, duration, result.Closed)

	if result.Closed > 0 || result.Failed > 0 {
		s.logger.Info("Sweep run finished",
			zap.String("run_id", runID),
			zap.Int("scanned", result.Scanned),
			zap.Int("closed", result.Closed),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", duration),
		)
	}

	return result, nil
}

func (s *ClockoutSweeper) sweepSession(ctx context.Context, session *model.AttendanceSession, now time.Time, grace time.Duration) (bool, error) {
	employee, err := s.employeeRepo.GetByID(ctx, session.EmployeeID)
	if err != nil {
		return false, err
	}

	shift := s.reconciler.LoadShift(ctx, employee)

	// 未排班员工算不出截止时间，留给真实下班卡或手工补卡
	deadline, ok := service.AutoClockoutDeadline(session.ClockIn, shift, grace)
	if !ok {
		return false, nil
	}
	if now.Before(deadline) {
		return false, nil
	}

	won, err := s.reconciler.CloseForSweep(ctx, session, now, shift)
	if err != nil {
		return false, err
	}
	if !won {
		// 真实下班卡抢先关了，不算失败
		return false, nil
	}

	metrics.RecordSessionClosed(ctx, string(model.CloseReasonAutoSweep))
	s.notifyAutoClockout(employee, session, now)

	return true, nil
}

func (s *ClockoutSweeper) notifyAutoClockout(employee *model.Employee, session *model.AttendanceSession, at time.Time) {
	messageID, err := snowflake.NextID()
	if err != nil {
		s.logger.Warn("生成事件 ID 失败", zap.Error(err))
		return
	}

	event := &model.AttendanceEvent{
		MessageID: "att_event_" + strconv.FormatInt(messageID, 10),
		Type:      "AUTO_CLOCKOUT",
		Employee: model.AttendanceEventEmployee{
			ID:         employee.PublicID,
			Name:       employee.Name,
			Department: employee.Department,
		},
		Timestamp: at.Format(time.RFC3339),
		SessionID: session.PublicID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.notifier.Publish(ctx, event); err != nil {
			s.logger.Warn("自动关账事件广播失败",
				zap.String("message_id", event.MessageID),
				zap.Error(err),
			)
		}
	}()
}
