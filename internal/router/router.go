package router

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"AreYouIn/internal/handler"
	"AreYouIn/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Health)

	v1 := h.Group("/v1")

	// 管理端令牌续期
	auth := v1.Group("/auth")
	{
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 自助机打卡路由，不鉴权，按 IP 限流
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.PunchRateLimitMiddleware())
	{
		attendance.POST("/record", handler.RecordPunch)
		attendance.POST("/clock-in", handler.ClockIn)
		attendance.POST("/clock-out", handler.ClockOut)
		attendance.GET("/today/:employee_id", handler.TodayStatus)
	}

	// 管理端路由，需要鉴权
	admin := v1.Group("/attendance")
	admin.Use(middleware.AuthMiddleware(), middleware.GeneralRateLimitMiddleware())
	{
		admin.POST("/manual", handler.ManualEntry)
		admin.POST("/sweep", handler.TriggerSweep)
	}

	terminals := v1.Group("/terminals")
	terminals.Use(middleware.AuthMiddleware())
	{
		terminals.GET("", handler.ListTerminals)
	}

	// 考勤机推送协议，text/plain，不鉴权不限流
	iclock := h.Group("/iclock")
	{
		iclock.GET("/cdata", handler.DeviceInit)
		iclock.POST("/cdata", handler.DeviceUpload)
		iclock.GET("/getrequest", handler.DevicePoll)
		iclock.POST("/devicecmd", handler.DeviceCmdResult)
	}

	// 设备会探测未注册的协议路径，/iclock 前缀下兜底应答 OK
	h.NoRoute(func(ctx context.Context, c *app.RequestContext) {
		if strings.HasPrefix(string(c.Path()), handler.IclockPathPrefix) {
			handler.IclockCatchAll(ctx, c)
			return
		}
		c.JSON(consts.StatusNotFound, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})
}
