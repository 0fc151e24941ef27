package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"dmrelay/internal/config"
	"dmrelay/internal/constants"
	"dmrelay/internal/logger"
	"dmrelay/pkg/logging"
	"dmrelay/pkg/models"
	"dmrelay/pkg/tracing"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg models.EventEnvelope) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := messageHeaders(ctx, msg)

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(msg.ID),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	return nil
}

func messageHeaders(ctx context.Context, msg models.EventEnvelope) []kafka.Header {
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(msg.Type)},
	}
	if id := logging.GetBroadcastID(ctx); id != "" {
		headers = append(headers, kafka.Header{Key: "broadcast_id", Value: []byte(id)})
	}
	return tracing.InjectTraceContext(ctx, headers)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
