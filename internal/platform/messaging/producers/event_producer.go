package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

// EventProducer routes risk-check and notification events to their Kafka topics
type EventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topics map[event.Kind]string
}

// NewEventProducer ensures both topics exist and returns a synchronous producer
func NewEventProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*EventProducer, error) {
	if cfg.RiskTopic == "" || cfg.NotificationTopic == "" {
		return nil, fmt.Errorf("kafka risk and notification topics must be configured")
	}

	brokers := strings.Split(cfg.Brokers, ",")
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for event producer: %w", err)
	}
	defer conn.Close()

	for _, topic := range []string{cfg.RiskTopic, cfg.NotificationTopic} {
		if err := createKafkaTopicIfNotExists(conn, topic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
			return nil, fmt.Errorf("failed to ensure topic %s exists: %w", topic, err)
		}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}

	return newEventProducer(logger, writer, cfg.RiskTopic, cfg.NotificationTopic), nil
}

func newEventProducer(logger *slog.Logger, writer KafkaWriter, riskTopic, notificationTopic string) *EventProducer {
	return &EventProducer{
		logger: logger.With("component", "event_producer"),
		writer: writer,
		topics: map[event.Kind]string{
			event.KindRiskCheck:    riskTopic,
			event.KindNotification: notificationTopic,
		},
	}
}

// Publish writes msg keyed by transaction id so every event for a transaction lands on one partition
func (p *EventProducer) Publish(ctx context.Context, msg *event.Message) error {
	topic, ok := p.topics[msg.Kind]
	if !ok {
		return fmt.Errorf("no topic configured for event kind %q", msg.Kind)
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", msg.Kind, err)
	}

	km := kafka.Message{
		Topic: topic,
		Key:   []byte(msg.TransactionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
			{Key: "operation", Value: []byte(msg.Operation)},
		},
	}

	if err := p.writer.WriteMessages(ctx, km); err != nil {
		p.logger.Error("Failed to publish event",
			"topic", topic,
			"transaction_id", msg.TransactionID,
			"attempt", msg.Attempts,
			"error", err,
		)
		return fmt.Errorf("failed to publish %s event to %s: %w", msg.Kind, topic, err)
	}

	p.logger.Debug("Published event",
		"topic", topic,
		"transaction_id", msg.TransactionID,
	)
	return nil
}

func (p *EventProducer) Close() error {
	p.logger.Info("Closing Kafka event producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka event writer: %w", err)
	}
	return nil
}
