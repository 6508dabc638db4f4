package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AttendanceMetrics 考勤链路指标集合
type AttendanceMetrics struct {
	PunchesAcceptedTotal metric.Int64Counter
	PunchesRejectedTotal metric.Int64Counter
	SessionsOpenedTotal  metric.Int64Counter
	SessionsClosedTotal  metric.Int64Counter
	SweepRunDuration     metric.Float64Histogram
	TerminalUploadsTotal metric.Int64Counter
	UploadLinesSkipped   metric.Int64Counter
}

var (
	metrics *AttendanceMetrics
	meter   = otel.Meter("areyouin")
)

// Init 初始化考勤指标
func Init() error {
	m := &AttendanceMetrics{}
	var err error

	m.PunchesAcceptedTotal, err = meter.Int64Counter(
		"attendance_punches_accepted_total",
		metric.WithDescription("Total number of accepted punches"),
		metric.WithUnit("{punch}"),
	)
	if err != nil {
		return err
	}

	m.PunchesRejectedTotal, err = meter.Int64Counter(
		"attendance_punches_rejected_total",
		metric.WithDescription("Total number of rejected punches"),
		metric.WithUnit("{punch}"),
	)
	if err != nil {
		return err
	}

	m.SessionsOpenedTotal, err = meter.Int64Counter(
		"attendance_sessions_opened_total",
		metric.WithDescription("Total number of sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	m.SessionsClosedTotal, err = meter.Int64Counter(
		"attendance_sessions_closed_total",
		metric.WithDescription("Total number of sessions closed"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	m.SweepRunDuration, err = meter.Float64Histogram(
		"attendance_sweep_run_duration_seconds",
		metric.WithDescription("Auto clock-out sweep duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.TerminalUploadsTotal, err = meter.Int64Counter(
		"attendance_terminal_uploads_total",
		metric.WithDescription("Total number of terminal upload batches"),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		return err
	}

	m.UploadLinesSkipped, err = meter.Int64Counter(
		"attendance_upload_lines_skipped_total",
		metric.WithDescription("Malformed terminal upload lines skipped"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// 指标未初始化时直接丢弃，观测不能影响主流程

func RecordPunchAccepted(ctx context.Context, source, eventType string) {
	if metrics == nil {
		return
	}
	metrics.PunchesAcceptedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("event_type", eventType),
	))
}

func RecordPunchRejected(ctx context.Context, source, reason string) {
	if metrics == nil {
		return
	}
	metrics.PunchesRejectedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("reason", reason),
	))
}

func RecordSessionOpened(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.SessionsOpenedTotal.Add(ctx, 1)
}

func RecordSessionClosed(ctx context.Context, closeReason string) {
	if metrics == nil {
		return
	}
	metrics.SessionsClosedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("close_reason", closeReason),
	))
}

func RecordSweepRun(ctx context.Context, d time.Duration, closed int) {
	if metrics == nil {
		return
	}
	metrics.SweepRunDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.Int("closed", closed),
	))
}

func RecordTerminalUpload(ctx context.Context, sn string, processed, skipped int) {
	if metrics == nil {
		return
	}
	metrics.TerminalUploadsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("terminal_sn", sn),
	))
	if skipped > 0 {
		metrics.UploadLinesSkipped.Add(ctx, int64(skipped), metric.WithAttributes(
			attribute.String("terminal_sn", sn),
		))
	}
}
