package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"AreYouIn/config"
	"AreYouIn/internal/queue"
	"AreYouIn/internal/schedule"
	"AreYouIn/internal/service"
	"AreYouIn/pkg/logger"
	"AreYouIn/pkg/metrics"
	"AreYouIn/pkg/snowflake"
	"AreYouIn/storage"
)

// 自动关账清扫进程，和 HTTP 服务分开部署
// 单实例跑就够了：条件更新保证就算多实例并发也不会重复关账

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Sweeper received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for sweeper", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for sweeper", zap.Error(err))
	}

	if err := metrics.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize attendance metrics", zap.Error(err))
	}

	service.RegisterNotifier(queue.NewEventNotifier())

	logger.Logger.Info("Sweeper service starting",
		zap.String("service", config.Cfg.ServiceName+"-sweeper"),
		zap.String("environment", config.Cfg.Environment),
	)

	schedule.Sweeper().Run(ctx)

	logger.Logger.Info("Sweeper service shutting down gracefully")
}
