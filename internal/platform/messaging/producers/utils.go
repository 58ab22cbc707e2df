package producers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	partitionReadAttempts = 3
	partitionReadBackoff  = time.Second
)

// topicAdmin is the subset of *kafka.Conn used for topic bootstrap
type topicAdmin interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	CreateTopics(topics ...kafka.TopicConfig) error
}

// createKafkaTopicIfNotExists creates the topic when no partitions can be read for it
func createKafkaTopicIfNotExists(conn topicAdmin, topicName string, numPartitions int, replicationFactor int, log *slog.Logger) error {
	return ensureTopic(conn, topicName, numPartitions, replicationFactor, partitionReadBackoff, log)
}

func ensureTopic(conn topicAdmin, topicName string, numPartitions, replicationFactor int, backoff time.Duration, log *slog.Logger) error {
	var (
		partitions []kafka.Partition
		err        error
	)

	for attempt := 1; attempt <= partitionReadAttempts; attempt++ {
		partitions, err = conn.ReadPartitions(topicName)
		if err == nil && len(partitions) > 0 {
			log.Info("Kafka topic already exists", "topic", topicName, "partitions", len(partitions))
			return nil
		}
		log.Warn("Failed to read partitions, retrying", "topic", topicName, "attempt", attempt, "error", err)
		time.Sleep(backoff)
	}

	topicConfig := kafka.TopicConfig{
		Topic:             topicName,
		NumPartitions:     max(numPartitions, 1),
		ReplicationFactor: max(replicationFactor, 1),
	}
	log.Info("Creating Kafka topic",
		"topic", topicName,
		"partitions", topicConfig.NumPartitions,
		"replication_factor", topicConfig.ReplicationFactor)

	if err := conn.CreateTopics(topicConfig); err != nil {
		return fmt.Errorf("failed to create kafka topic %s: %w", topicName, err)
	}
	return nil
}
