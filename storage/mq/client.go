package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"AreYouIn/config"
)

// AttendanceExchange 考勤实时事件的 topic 交换机
// 路由键：attendance.clock_in / attendance.clock_out / attendance.auto_clockout
const AttendanceExchange = "attendance.events"

var (
	conn    *amqp.Connection
	mqOnce  sync.Once
	initErr error
)

func Init() error {
	mqOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		conn, initErr = amqp.Dial(url)
		if initErr != nil {
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			initErr = err
			return
		}
		defer ch.Close()

		initErr = ch.ExchangeDeclare(
			AttendanceExchange,
			"topic",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
	})

	return initErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
