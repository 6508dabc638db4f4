package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"AreYouIn/config"
	"AreYouIn/internal/cache"
	"AreYouIn/internal/service"
	"AreYouIn/pkg/logger"
)

// iclock 推送协议适配
// 考勤机只认 text/plain 和固定应答词，任何路径都不能回错误码，
// 否则设备会反复重试同一批记录

const IclockPathPrefix = "/iclock"

// DeviceInit 设备初始化握手
// GET /iclock/cdata?SN=xxx
// 应答 options 块告诉设备上传哪些表、推送节奏和时区
func DeviceInit(ctx context.Context, c *app.RequestContext) {
	sn := c.Query("SN")
	if sn == "" {
		c.String(consts.StatusOK, "OK")
		return
	}

	if _, err := service.Terminal().RegisterOrTouch(ctx, sn); err != nil {
		logger.Logger.Error("考勤机建档失败", zap.String("sn", sn), zap.Error(err))
		// 设备侧无法处理错误，照常应答
	}

	cfg := config.Cfg
	options := fmt.Sprintf("GET OPTION FROM: %s\r\n"+
		"ATTLOGStamp=None\r\n"+
		"OPERLOGStamp=9999\r\n"+
		"ATTPHOTOStamp=None\r\n"+
		"ErrorDelay=%d\r\n"+
		"Delay=%d\r\n"+
		"TransTimes=00:00;14:05\r\n"+
		"TransInterval=1\r\n"+
		"TransFlag=TransData AttLog OpLog\r\n"+
		"TimeZone=%d\r\n"+
		"Realtime=1\r\n"+
		"Encrypt=None",
		sn, cfg.TerminalErrorDelay, cfg.TerminalPollDelay, cfg.TerminalTimeZone)

	c.String(consts.StatusOK, options)
}

// DeviceUpload 设备记录上传
// POST /iclock/cdata?SN=xxx&table=ATTLOG
// 应答 "OK: N"，N 为收到的非空行数，与解析成败无关
func DeviceUpload(ctx context.Context, c *app.RequestContext) {
	sn := c.Query("SN")
	table := c.Query("table")
	body := string(c.Request.Body())

	if sn != "" {
		if _, err := service.Terminal().RegisterOrTouch(ctx, sn); err != nil {
			logger.Logger.Error("考勤机建档失败", zap.String("sn", sn), zap.Error(err))
		}
	}

	if table != "ATTLOG" {
		// OPERLOG、ATTPHOTO 等表只确认收到，不处理
		c.String(consts.StatusOK, "OK: %d", countLines(body))
		return
	}

	stats := attendance().ProcessUpload(ctx, sn, body)
	if stats.Skipped > 0 {
		logger.Logger.Warn("考勤机上传部分记录被跳过",
			zap.String("sn", sn),
			zap.Int("lines", stats.Lines),
			zap.Int("processed", stats.Processed),
			zap.Int("skipped", stats.Skipped),
		)
	}

	if err := cache.IncrUploadCount(ctx, sn, service.DayStart(time.Now()).Format("2006-01-02"), stats.Processed); err != nil {
		logger.Logger.Warn("累加上传计数失败", zap.String("sn", sn), zap.Error(err))
	}

	c.String(consts.StatusOK, "OK: %d", stats.Lines)
}

// DevicePoll 设备轮询下行命令
// GET /iclock/getrequest?SN=xxx
// 暂无下行命令队列，固定应答 OK
func DevicePoll(ctx context.Context, c *app.RequestContext) {
	if sn := c.Query("SN"); sn != "" {
		if _, err := service.Terminal().RegisterOrTouch(ctx, sn); err != nil {
			logger.Logger.Error("考勤机建档失败", zap.String("sn", sn), zap.Error(err))
		}
	}
	c.String(consts.StatusOK, "OK")
}

// DeviceCmdResult 设备命令执行回报，只记日志
// POST /iclock/devicecmd
func DeviceCmdResult(ctx context.Context, c *app.RequestContext) {
	logger.Logger.Info("考勤机命令回报",
		zap.String("sn", c.Query("SN")),
		zap.String("body", string(c.Request.Body())),
	)
	c.String(consts.StatusOK, "OK")
}

// IclockCatchAll 协议兜底
// 设备会探测未文档化的路径，一律应答 OK，不能 404
func IclockCatchAll(ctx context.Context, c *app.RequestContext) {
	c.String(consts.StatusOK, "OK")
}

func countLines(body string) int {
	count := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
