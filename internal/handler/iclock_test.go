package handler

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"AreYouIn/internal/model"
	"AreYouIn/internal/service"
	"AreYouIn/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// 空库存根：上传批次里的行要么格式坏、要么工号未知，全部在规范化阶段被跳过

type stubEmployeeRepo struct{}

func (stubEmployeeRepo) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubEmployeeRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubEmployeeRepo) GetByCode(ctx context.Context, code string) (*model.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubShiftRepo struct{}

func (stubShiftRepo) GetByID(ctx context.Context, id int64) (*model.Shift, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubPunchRepo struct{}

func (stubPunchRepo) Create(ctx context.Context, punch *model.Punch) error { return nil }

func (stubPunchRepo) LastAccepted(ctx context.Context, employeeID int64, punchType model.PunchType) (*model.Punch, error) {
	return nil, gorm.ErrRecordNotFound
}

type stubSessionRepo struct{}

func (stubSessionRepo) Create(ctx context.Context, session *model.AttendanceSession) error {
	return nil
}

func (stubSessionRepo) FindOpen(ctx context.Context, employeeID int64, from, to time.Time) (*model.AttendanceSession, error) {
	return nil, gorm.ErrRecordNotFound
}

func (stubSessionRepo) ListOpen(ctx context.Context) ([]*model.AttendanceSession, error) {
	return nil, nil
}

func (stubSessionRepo) ListByDay(ctx context.Context, employeeID int64, from, to time.Time) ([]*model.AttendanceSession, error) {
	return nil, nil
}

func (stubSessionRepo) CloseIfOpen(ctx context.Context, session *model.AttendanceSession) (bool, error) {
	return false, nil
}

func (stubSessionRepo) AppendSourcePunch(ctx context.Context, sessionID int64, punchID int64) error {
	return nil
}

func withStubAttendance(t *testing.T) {
	t.Helper()
	restore := attendance
	attendance = func() *service.AttendanceService {
		return service.NewAttendanceService(stubEmployeeRepo{}, stubShiftRepo{}, stubPunchRepo{}, stubSessionRepo{}, service.NoopNotifier{}, nil)
	}
	t.Cleanup(func() { attendance = restore })
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{"", 0},
		{"\n\n", 0},
		{"a", 1},
		{"a\nb\nc", 3},
		{"a\r\nb\r\n", 2},
		{"a\n\nb\n", 2}, // 空行不计数
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, countLines(tc.body), "body=%q", tc.body)
	}
}

func TestDeviceUploadRepliesReceivedLineCount(t *testing.T) {
	withStubAttendance(t)

	// 5 行全部处理失败（格式坏或工号未知），应答仍按收到的行数确认
	body := "9999\t2026-09-07 09:00:00\t0\t1\n" +
		"8888\t2026-09-07 17:30:00\t1\t1\n" +
		"garbage\n" +
		"0\t2026-09-07 09:00:00\t0\n" +
		"7777\tnot-a-timestamp\t0\n"

	var c app.RequestContext
	c.Request.SetRequestURI("/iclock/cdata?table=ATTLOG")
	c.Request.SetBodyString(body)

	DeviceUpload(context.Background(), &c)

	assert.Equal(t, 200, c.Response.StatusCode())
	assert.Equal(t, "OK: 5", string(c.Response.Body()))
}

func TestDeviceUploadNonAttlogTableAcknowledged(t *testing.T) {
	withStubAttendance(t)

	var c app.RequestContext
	c.Request.SetRequestURI("/iclock/cdata?table=OPERLOG")
	c.Request.SetBodyString("op1\nop2\nop3\n")

	DeviceUpload(context.Background(), &c)

	assert.Equal(t, "OK: 3", string(c.Response.Body()))
}

func TestIclockCatchAllAlwaysOK(t *testing.T) {
	var c app.RequestContext

	IclockCatchAll(context.Background(), &c)

	assert.Equal(t, 200, c.Response.StatusCode())
	assert.Equal(t, "OK", string(c.Response.Body()))
}

func TestDeviceInitWithoutSN(t *testing.T) {
	var c app.RequestContext

	// 没带 SN 的探测请求不建档，直接确认
	DeviceInit(context.Background(), &c)

	assert.Equal(t, 200, c.Response.StatusCode())
	assert.Equal(t, "OK", string(c.Response.Body()))
}

func TestDevicePollWithoutSN(t *testing.T) {
	var c app.RequestContext

	DevicePoll(context.Background(), &c)

	assert.Equal(t, "OK", string(c.Response.Body()))
}
