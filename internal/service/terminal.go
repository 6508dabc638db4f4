package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AreYouIn/internal/cache"
	"AreYouIn/internal/model"
	"AreYouIn/internal/model/dto"
	"AreYouIn/internal/repository"
	"AreYouIn/pkg/logger"
)

// TerminalService 考勤机档案和在线状态
type TerminalService struct {
	terminalRepo repository.TerminalRepo
	now          func() time.Time
}

var (
	terminalService *TerminalService
	terminalOnce    sync.Once
)

func Terminal() *TerminalService {
	terminalOnce.Do(func() {
		terminalService = NewTerminalService(repository.DefaultTerminalRepo(), time.Now)
	})
	return terminalService
}

func NewTerminalService(terminalRepo repository.TerminalRepo, now func() time.Time) *TerminalService {
	if now == nil {
		now = time.Now
	}
	return &TerminalService{terminalRepo: terminalRepo, now: now}
}

// RegisterOrTouch 设备请求到达时调用：陌生 SN 自动建档，已知 SN 刷新最后在线时间
// 协议层没有准入控制，建档后由后台人工稽核
func (s *TerminalService) RegisterOrTouch(ctx context.Context, sn string) (*model.Terminal, error) {
	now := s.now()

	terminal, err := s.terminalRepo.GetBySN(ctx, sn)
	if err != nil {
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		terminal = &model.Terminal{
			SN:             sn,
			LastSeenAt:     &now,
			SelfRegistered: true,
		}
		if err := s.terminalRepo.Create(ctx, terminal); err != nil {
			return nil, err
		}
		logger.Logger.Info("考勤机自动建档", zap.String("sn", sn))
	} else {
		if err := s.terminalRepo.Touch(ctx, sn, now); err != nil {
			return nil, err
		}
		terminal.LastSeenAt = &now
	}

	// 在线标记丢了只影响列表展示，不阻塞协议应答
	if err := cache.MarkTerminalSeen(ctx, sn); err != nil {
		logger.Logger.Warn("刷新考勤机在线标记失败", zap.String("sn", sn), zap.Error(err))
	}

	return terminal, nil
}

// List 考勤机列表，带在线状态和当日上传量
func (s *TerminalService) List(ctx context.Context) ([]dto.TerminalItem, error) {
	terminals, err := s.terminalRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	today := DayStart(s.now()).Format("2006-01-02")
	items := make([]dto.TerminalItem, 0, len(terminals))
	for _, terminal := range terminals {
		online, err := cache.IsTerminalOnline(ctx, terminal.SN)
		if err != nil {
			logger.Logger.Warn("查询考勤机在线状态失败", zap.String("sn", terminal.SN), zap.Error(err))
		}
		uploaded, err := cache.GetUploadCount(ctx, terminal.SN, today)
		if err != nil {
			logger.Logger.Warn("查询考勤机上传量失败", zap.String("sn", terminal.SN), zap.Error(err))
		}
		items = append(items, dto.TerminalItem{
			SN:             terminal.SN,
			Name:           terminal.Name,
			Online:         online,
			LastSeenAt:     terminal.LastSeenAt,
			UploadedToday:  uploaded,
			SelfRegistered: terminal.SelfRegistered,
		})
	}
	return items, nil
}
