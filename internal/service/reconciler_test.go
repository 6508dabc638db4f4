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

func shiftEmployee(shiftID int64) *model.Employee {
	e := testEmployee()
	e.ShiftID = &shiftID
	return &e
}

func newTestReconciler(sessionRepo *fakeSessionRepo, shifts ...model.Shift) *Reconciler {
	return NewReconciler(sessionRepo, newFakeShiftRepo(shifts...), 8)
}

func makePunch(id int64, punchType model.PunchType, ts time.Time) *model.Punch {
	p := &model.Punch{
		EmployeeID: 7,
		Type:       punchType,
		Source:     model.PunchSourceKiosk,
		Timestamp:  ts,
		ReceivedAt: ts,
	}
	p.ID = id
	return p
}

func TestClockInOpensSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	shift := dayShift()
	shift.ID = 3
	r := newTestReconciler(sessions, *shift)

	session, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 20, 0)), shiftEmployee(3))

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusOpen, session.Status)
	assert.Equal(t, workday(9, 20, 0), session.ClockIn)
	assert.Equal(t, workday(0, 0, 0), session.WorkDate)
	assert.Equal(t, model.LatenessLate, session.Lateness) // 09:20 超过 09:00+15m
	assert.Equal(t, model.Int64List{1}, session.SourcePunchIDs)
}

func TestClockInThenClockOutClosesSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	shift := dayShift()
	shift.ID = 3
	r := newTestReconciler(sessions, *shift)
	employee := shiftEmployee(3)

	opened, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)
	require.NoError(t, err)

	closed, err := r.Apply(context.Background(), makePunch(2, model.PunchTypeClockOut, workday(17, 30, 0)), employee)
	require.NoError(t, err)

	assert.Equal(t, opened.ID, closed.ID)
	assert.Equal(t, model.SessionStatusClosed, closed.Status)
	assert.Equal(t, model.CloseReasonPunch, closed.CloseReason)
	assert.Equal(t, 8.5, closed.TotalHours)
	assert.Equal(t, 8.0, closed.RegularHours)
	assert.Equal(t, 0.5, closed.OvertimeHours)
	assert.Equal(t, model.Int64List{1, 2}, closed.SourcePunchIDs)

	stored, ok := sessions.get(closed.ID)
	require.True(t, ok)
	assert.Equal(t, model.SessionStatusClosed, stored.Status)
}

func TestRepeatedClockInIsSessionLevelNoop(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	first, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)
	require.NoError(t, err)

	// 考勤机离线队列重放旧上班卡：不开第二条会话，只追加来源
	second, err := r.Apply(context.Background(), makePunch(2, model.PunchTypeClockIn, workday(11, 0, 0)), employee)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	stored, ok := sessions.get(first.ID)
	require.True(t, ok)
	assert.Equal(t, model.SessionStatusOpen, stored.Status)
	assert.Equal(t, model.Int64List{1, 2}, stored.SourcePunchIDs)
}

func TestOrphanClockOut(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	_, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockOut, workday(17, 0, 0)), employee)

	assert.ErrorIs(t, err, errors.NoOpenSession)
	list, listErr := sessions.ListOpen(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, list) // 不开也不关任何会话
}

func TestInactiveEmployeeRejected(t *testing.T) {
	r := newTestReconciler(newFakeSessionRepo())
	employee := &model.Employee{Status: model.EmployeeStatusResigned}
	employee.ID = 7

	_, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)

	assert.ErrorIs(t, err, errors.EmployeeNotActive)
}

func TestMultipleSessionsPerDay(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	// 早退再回来：关了第一段后第二次上班卡开新会话
	_, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)
	require.NoError(t, err)
	first, err := r.Apply(context.Background(), makePunch(2, model.PunchTypeClockOut, workday(12, 0, 0)), employee)
	require.NoError(t, err)

	second, err := r.Apply(context.Background(), makePunch(3, model.PunchTypeClockIn, workday(14, 0, 0)), employee)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.SessionStatusOpen, second.Status)
}

func TestClockOutRaceLoserIsNoop(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	opened, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)
	require.NoError(t, err)

	// 清扫任务先赢下条件更新
	won, err := r.CloseForSweep(context.Background(), opened, workday(17, 10, 0), nil)
	require.NoError(t, err)
	require.True(t, won)

	// 迟到的真实下班卡输掉竞态，退化为孤儿下班卡
	_, err = r.Apply(context.Background(), makePunch(2, model.PunchTypeClockOut, workday(17, 10, 0)), employee)
	assert.ErrorIs(t, err, errors.NoOpenSession)

	stored, ok := sessions.get(opened.ID)
	require.True(t, ok)
	assert.Equal(t, model.CloseReasonAutoSweep, stored.CloseReason)
}

func TestNightShiftClockOutFindsPreviousDaySession(t *testing.T) {
	sessions := newFakeSessionRepo()
	shift := nightShift()
	shift.ID = 5
	r := newTestReconciler(sessions, *shift)
	employee := shiftEmployee(5)

	// 周一 22:00 上班，周二 06:00 下班
	_, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(22, 0, 0)), employee)
	require.NoError(t, err)

	closed, err := r.Apply(context.Background(), makePunch(2, model.PunchTypeClockOut, time.Date(2026, 9, 8, 6, 0, 0, 0, time.UTC)), employee)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusClosed, closed.Status)
	assert.Equal(t, 8.0, closed.TotalHours)
}

func TestManualEntryOneShotClose(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	clockOut := workday(17, 0, 0)
	session, err := r.ApplyManual(context.Background(), employee, workday(9, 0, 0), &clockOut, 30, "忘记打卡，主管补录", []int64{11, 12})

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusClosed, session.Status)
	assert.Equal(t, model.CloseReasonManual, session.CloseReason)
	assert.True(t, session.IsManualEntry)
	assert.Equal(t, 7.5, session.TotalHours)
	assert.Equal(t, model.Int64List{11, 12}, session.SourcePunchIDs)
}

func TestManualEntryOpenOnly(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	session, err := r.ApplyManual(context.Background(), employee, workday(9, 0, 0), nil, 0, "", nil)

	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusOpen, session.Status)
	assert.True(t, session.IsManualEntry)
}

func TestManualEntryOpenOnlyAppendsToExistingSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	r := newTestReconciler(sessions)
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	opened, err := r.Apply(context.Background(), makePunch(1, model.PunchTypeClockIn, workday(9, 0, 0)), employee)
	require.NoError(t, err)

	// 当天已有 open 会话时补卡不开第二条，但补的打卡要挂到会话上
	session, err := r.ApplyManual(context.Background(), employee, workday(9, 30, 0), nil, 0, "", []int64{21})
	require.NoError(t, err)

	assert.Equal(t, opened.ID, session.ID)
	assert.Equal(t, model.Int64List{1, 21}, session.SourcePunchIDs)

	stored, ok := sessions.get(opened.ID)
	require.True(t, ok)
	assert.Equal(t, model.Int64List{1, 21}, stored.SourcePunchIDs)
}

func TestManualEntryInvalidRange(t *testing.T) {
	r := newTestReconciler(newFakeSessionRepo())
	employee := &model.Employee{Status: model.EmployeeStatusActive}
	employee.ID = 7

	clockOut := workday(8, 0, 0)
	_, err := r.ApplyManual(context.Background(), employee, workday(9, 0, 0), &clockOut, 0, "", nil)

	assert.ErrorIs(t, err, errors.ManualRangeInvalid)
}
