package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"AreYouIn/internal/model"
	"AreYouIn/internal/model/dto"
	"AreYouIn/internal/schedule"
	"AreYouIn/internal/service"
	"AreYouIn/pkg/response"
)

// attendance 打卡编排服务的获取入口，测试替换成假实现
var attendance = service.Attendance

// RecordPunch 自助机打卡
// POST /v1/attendance/record
func RecordPunch(ctx context.Context, c *app.RequestContext) {
	var req dto.RecordPunchRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	recordPunch(ctx, c, &req)
}

// ClockIn 打上班卡的便捷入口
// POST /v1/attendance/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
	var req dto.RecordPunchRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	req.Type = string(model.PunchTypeClockIn)
	recordPunch(ctx, c, &req)
}

// ClockOut 打下班卡的便捷入口
// POST /v1/attendance/clock-out
func ClockOut(ctx context.Context, c *app.RequestContext) {
	var req dto.RecordPunchRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	req.Type = string(model.PunchTypeClockOut)
	recordPunch(ctx, c, &req)
}

func recordPunch(ctx context.Context, c *app.RequestContext, req *dto.RecordPunchRequest) {
	punch, _, err := attendance().RecordKiosk(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	message := "Clock-in recorded"
	if punch.Type == model.PunchTypeClockOut {
		message = "Clock-out recorded"
	}
	response.Created(ctx, c, message, dto.PunchData{
		EmployeeID: strconv.FormatInt(punch.EmployeeID, 10),
		Type:       string(punch.Type),
		Timestamp:  punch.Timestamp,
	})
}

// ManualEntry 后台手工补卡
// POST /v1/attendance/manual
func ManualEntry(ctx context.Context, c *app.RequestContext) {
	var req dto.ManualEntryRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	session, err := attendance().ManualEntry(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	data := service.ToSessionData(session)
	response.Created(ctx, c, "Manual entry recorded", data)
}

// TodayStatus 员工当日考勤状态
// GET /v1/attendance/today/:employee_id
func TodayStatus(ctx context.Context, c *app.RequestContext) {
	employeeID := c.Param("employee_id")

	data, err := attendance().TodayStatus(ctx, employeeID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// TriggerSweep 手动触发一轮自动关账清扫
// POST /v1/attendance/sweep
func TriggerSweep(ctx context.Context, c *app.RequestContext) {
	result, err := schedule.Sweeper().RunOnce(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, result)
}

// ListTerminals 考勤机列表
// GET /v1/terminals
func ListTerminals(ctx context.Context, c *app.RequestContext) {
	items, err := service.Terminal().List(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{
		"count": len(items),
		"as_of": time.Now().Format(time.RFC3339),
	})
}
