package producers

import (
	"context"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes post-processing events to their topic
type EventPublisher interface {
	Publish(ctx context.Context, msg *event.Message) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterPublisher parks messages the intake could not or would not process
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error
	Close() error
}
