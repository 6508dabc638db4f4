package database

import (
	"AreYouIn/internal/model"
	"AreYouIn/pkg/logger"
)

// Migrate 自动建表
// 员工和班次表由 HR 系统写入，这里一并迁移以便本地起环境
func Migrate() error {
	logger.Logger.Info("Running database migration...")

	return db.AutoMigrate(
		&model.Employee{},
		&model.Shift{},
		&model.Punch{},
		&model.AttendanceSession{},
		&model.Terminal{},
	)
}
