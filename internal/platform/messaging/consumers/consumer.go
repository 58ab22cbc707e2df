package consumers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Run(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader wraps kafka.Reader methods for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using a Kafka consumer group
type KafkaConsumer struct {
	reader       KafkaReader
	logger       *slog.Logger
	fetchBackoff time.Duration
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(cfg.Brokers, ","),
		Topic:       cfg.RequestTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})
	return newKafkaConsumer(logger.With("topic", cfg.RequestTopic, "group_id", cfg.ConsumerGroup), reader, time.Second)
}

func newKafkaConsumer(logger *slog.Logger, reader KafkaReader, fetchBackoff time.Duration) *KafkaConsumer {
	return &KafkaConsumer{
		reader:       reader,
		logger:       logger,
		fetchBackoff: fetchBackoff,
	}
}

// Run fetches messages until ctx is cancelled. An offset is committed only
// after the handler accepted the message.
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Consuming Kafka topic")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Context canceled, stopping consumer")
				return nil
			}
			c.logger.Error("Failed to fetch message from Kafka", "error", err)

			select {
			case <-ctx.Done():
				c.logger.Info("Context canceled, stopping consumer")
				return nil
			case <-time.After(c.fetchBackoff):
			}
			continue
		}

		c.logger.Debug("Received message from Kafka",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
		)

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("Failed to process message, will not commit offset",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit message after successful processing",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
				"error", err,
			)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
