package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"meridian/internal/shared/events"
)

// Kafka publishes outbox envelopes to a broker.
// One writer for all topics; topic resolved per event type, falling back to
// the configured default topic.
type Kafka struct {
	writer       *kafka.Writer
	defaultTopic string
	topicByEvent map[string]string
	logger       *slog.Logger
}

func NewKafka(brokers []string, defaultTopic string, topicByEvent map[string]string, logger *slog.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		defaultTopic: defaultTopic,
		topicByEvent: topicByEvent,
		logger:       logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, event events.Envelope) error {
	topic := k.defaultTopic
	if mapped, ok := k.topicByEvent[event.EventType]; ok && mapped != "" {
		topic = mapped
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	key := event.TenantID
	if key == "" {
		key = event.EventID
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	k.logger.Info("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
