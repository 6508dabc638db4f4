package queue

import (
	"context"
	"strings"

	"AreYouIn/internal/model"
	"AreYouIn/storage/mq"
)

// EventNotifier 把考勤事件投到 topic 交换机
// 路由键按事件类型派生：attendance.clock_in / attendance.clock_out / attendance.auto_clockout
type EventNotifier struct{}

func NewEventNotifier() *EventNotifier {
	return &EventNotifier{}
}

func (n *EventNotifier) Publish(ctx context.Context, event *model.AttendanceEvent) error {
	routingKey := "attendance." + strings.ToLower(event.Type)
	return mq.PublishMessage(ctx, mq.AttendanceExchange, routingKey, event)
}
