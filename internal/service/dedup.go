package service

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"AreYouIn/internal/model"
	"AreYouIn/internal/repository"
	"AreYouIn/pkg/errors"
)

// DedupGuard 近重复打卡拦截
// 按 (employee, type) 查打卡日志里最近一条已接受记录，落在窗口内即拒绝
// 窗口按来源区分：自助机拦快速双击，考勤机拦离线重传，手工补卡不拦
type DedupGuard struct {
	punchRepo      repository.PunchRepo
	kioskWindow    time.Duration
	terminalWindow time.Duration
}

func NewDedupGuard(punchRepo repository.PunchRepo, kioskWindow, terminalWindow time.Duration) *DedupGuard {
	return &DedupGuard{
		punchRepo:      punchRepo,
		kioskWindow:    kioskWindow,
		terminalWindow: terminalWindow,
	}
}

// Check 通过返回 nil，命中窗口返回 DuplicatePunch
// 类型不同的打卡互不影响：窗口内真实的上班+下班组合不会被误杀
func (g *DedupGuard) Check(ctx context.Context, punch *model.Punch) error {
	window := g.windowFor(punch.Source)
	if window <= 0 {
		return nil
	}

	last, err := g.punchRepo.LastAccepted(ctx, punch.EmployeeID, punch.Type)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	diff := punch.Timestamp.Sub(last.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	if diff < window {
		return errors.DuplicatePunch
	}
	return nil
}

func (g *DedupGuard) windowFor(source model.PunchSource) time.Duration {
	switch source {
	case model.PunchSourceKiosk:
		return g.kioskWindow
	case model.PunchSourceTerminal:
		return g.terminalWindow
	default:
		// 手工补卡带管理意图，不做窗口拦截
		return 0
	}
}
