package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"honeypot-service/internal/config"
	"honeypot-service/internal/models"
	"honeypot-service/internal/util"
)

// KafkaPublisher streams recorded attack events to a Kafka topic for
// downstream consumers (SIEM pipelines, alerting). It implements the
// recorder's EventSink contract.
type KafkaPublisher struct {
	writer  *kafka.Writer
	brokers []string
	logger  *zap.Logger
}

// NewKafkaPublisher creates the publisher with a batched writer.
func NewKafkaPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaPublisher, error) {
	kafkaConfig := cfg.Kafka

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaConfig.Brokers...),
		Topic:        kafkaConfig.Topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to write kafka messages",
					zap.Error(err),
					zap.Int("message_count", len(messages)),
				)
			}
		},
	}

	util.Info("Kafka publisher initialized",
		zap.Strings("brokers", kafkaConfig.Brokers),
		zap.String("topic", kafkaConfig.Topic),
	)

	return &KafkaPublisher{
		writer:  writer,
		brokers: kafkaConfig.Brokers,
		logger:  logger,
	}, nil
}

// Name identifies the sink in recorder logs.
func (p *KafkaPublisher) Name() string {
	return "kafka"
}

// Publish writes the event as JSON, keyed by client address so attempts from
// one source land in one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event *models.AttackEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal attack event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.IPAddress),
		Value: value,
	}); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

// HealthCheck dials the first broker and lists partitions.
func (p *KafkaPublisher) HealthCheck(ctx context.Context) error {
	dialer := &kafka.Dialer{Timeout: 5 * time.Second, DualStack: true}

	conn, err := dialer.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka broker: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read kafka partitions: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			util.Error("failed to close Kafka publisher", zap.Error(err))
			return err
		}
		util.Info("Kafka publisher closed")
	}
	return nil
}
