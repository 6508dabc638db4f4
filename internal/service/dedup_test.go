package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AreYouIn/internal/model"
	"AreYouIn/pkg/errors"
)

func acceptedPunch(t *testing.T, repo *fakePunchRepo, employeeID int64, punchType model.PunchType, ts time.Time) {
	t.Helper()
	punch := &model.Punch{
		EmployeeID: employeeID,
		Type:       punchType,
		Source:     model.PunchSourceKiosk,
		Timestamp:  ts,
		ReceivedAt: ts,
	}
	require.NoError(t, repo.Create(context.Background(), punch))
}

func newGuard(repo *fakePunchRepo) *DedupGuard {
	return NewDedupGuard(repo, 60*time.Second, 300*time.Second)
}

func TestDedupRejectsWithinKioskWindow(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceKiosk,
		Timestamp:  base.Add(30 * time.Second),
	})

	assert.ErrorIs(t, err, errors.DuplicatePunch)
}

func TestDedupAcceptsOutsideKioskWindow(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceKiosk,
		Timestamp:  base.Add(61 * time.Second),
	})

	assert.NoError(t, err)
}

func TestDedupTerminalWindowIsWider(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	guard := newGuard(repo)

	// 同一偏移：自助机放行，考勤机仍然拦截
	kiosk := &model.Punch{EmployeeID: 7, Type: model.PunchTypeClockIn, Source: model.PunchSourceKiosk, Timestamp: base.Add(2 * time.Minute)}
	terminal := &model.Punch{EmployeeID: 7, Type: model.PunchTypeClockIn, Source: model.PunchSourceTerminal, Timestamp: base.Add(2 * time.Minute)}

	assert.NoError(t, guard.Check(context.Background(), kiosk))
	assert.ErrorIs(t, guard.Check(context.Background(), terminal), errors.DuplicatePunch)
}

func TestDedupDifferentTypeNeverBlocked(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	// 窗口内真实的上班+下班组合不能被误杀
	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockOut,
		Source:     model.PunchSourceKiosk,
		Timestamp:  base.Add(10 * time.Second),
	})

	assert.NoError(t, err)
}

func TestDedupDifferentEmployeeNotBlocked(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 8,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceKiosk,
		Timestamp:  base.Add(5 * time.Second),
	})

	assert.NoError(t, err)
}

func TestDedupOutOfOrderDeliveryStillDetected(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	// 离线重传可能先送新后送旧，窗口按时间差绝对值判
	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceTerminal,
		Timestamp:  base.Add(-90 * time.Second),
	})

	assert.ErrorIs(t, err, errors.DuplicatePunch)
}

func TestDedupManualBypassesWindow(t *testing.T) {
	repo := newFakePunchRepo()
	base := workday(9, 0, 0)
	acceptedPunch(t, repo, 7, model.PunchTypeClockIn, base)

	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceManual,
		Timestamp:  base.Add(time.Second),
	})

	assert.NoError(t, err)
}

func TestDedupFirstPunchAccepted(t *testing.T) {
	repo := newFakePunchRepo()

	err := newGuard(repo).Check(context.Background(), &model.Punch{
		EmployeeID: 7,
		Type:       model.PunchTypeClockIn,
		Source:     model.PunchSourceKiosk,
		Timestamp:  workday(9, 0, 0),
	})

	assert.NoError(t, err)
}
