package broker

import (
	"context"
	"time"

	"dmrelay/internal/constants"
	"dmrelay/internal/logger"
	"dmrelay/internal/relay"
	"dmrelay/pkg/logging"
	"dmrelay/pkg/metrics"
	"dmrelay/pkg/models"
	"dmrelay/pkg/retry"
	"dmrelay/pkg/tracing"
)

// ReportSink publishes finished broadcast reports as events keyed by the
// broadcast id.
type ReportSink struct {
	producer Producer
	topic    string
	policy   retry.Policy
	logger   logger.Logger
}

func NewReportSink(producer Producer, topic string, log logger.Logger) *ReportSink {
	return &ReportSink{
		producer: producer,
		topic:    topic,
		policy:   retry.DefaultPolicy(),
		logger:   log,
	}
}

func (s *ReportSink) PublishReport(ctx context.Context, report relay.Report) error {
	builder := models.NewEventEnvelopeBuilder()
	if report.FinishedAt != nil {
		builder.WithTimestamp(*report.FinishedAt)
	}
	envelope, err := builder.
		WithID(report.ID).
		WithSource(constants.ServiceName).
		WithType(models.EventTypeBroadcastReport).
		WithPayload(report).
		WithTraceID(tracing.TraceID(ctx)).
		WithRequestID(logging.GetRequestID(ctx)).
		Build()
	if err != nil {
		metrics.IncReportPublished("kafka", "error")
		return err
	}

	err = retry.Retry(ctx, s.policy, func() error {
		return s.producer.Publish(ctx, s.topic, *envelope)
	}, func(attempt int, err error, next time.Duration) {
		s.logger.WarnwCtx(ctx, "Report publish failed, retrying",
			"broadcast_id", report.ID,
			"attempt", attempt,
			"next_retry_in", next,
			"error", err,
		)
	})
	if err != nil {
		metrics.IncReportPublished("kafka", "error")
		return err
	}

	metrics.IncReportPublished("kafka", "success")
	return nil
}
