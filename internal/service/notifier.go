package service

import (
	"context"

	"AreYouIn/internal/model"
)

// Notifier 实时事件广播能力，由 queue 层注入
// 纯 fire-and-forget：投递失败只记日志，绝不影响会话核算结果
type Notifier interface {
	Publish(ctx context.Context, event *model.AttendanceEvent) error
}

// NoopNotifier 未接消息队列时的空实现，测试也用它
type NoopNotifier struct{}

func (NoopNotifier) Publish(ctx context.Context, event *model.AttendanceEvent) error {
	return nil
}
