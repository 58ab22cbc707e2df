// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for the transaction engine: HTTP server,
// transaction limits, worker pools, and the optional Postgres, MongoDB and Kafka integrations.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account seed sources
const (
	SeedSourceBuiltin  = "builtin"
	SeedSourcePostgres = "postgres"
)

// Audit sinks
const (
	AuditSinkLog   = "log"
	AuditSinkMongo = "mongo"
)

// Event publishers
const (
	EventPublisherLog   = "log"
	EventPublisherKafka = "kafka"
)

// Transaction intakes besides HTTP
const (
	TransactionIntakeNone  = "none"
	TransactionIntakeKafka = "kafka"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a subsystem's configuration and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Limits      LimitConfig
	WorkerPool  WorkerPoolConfig
	Store       StoreConfig
	Integration IntegrationConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// LimitConfig holds the transaction limits. A nil decimal or a zero integer means
// the limit is not configured and the corresponding check is skipped.
type LimitConfig struct {
	MinimumTransactionAmount  *decimal.Decimal
	SingleTransactionLimit    *decimal.Decimal
	DailyTransactionLimit     *decimal.Decimal
	MonthlyTransactionLimit   *decimal.Decimal
	LargeAmountThreshold      *decimal.Decimal
	LowBalanceThreshold       *decimal.Decimal
	TransactionTimeoutSeconds int
	MaxRetryCount             int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size               int           // Maximum number of post-processing workers
	FetcherConcurrency int           // Maximum concurrent lookups per list page
	SettlementWait     time.Duration // Upper bound a create call waits for settlement
}

// StoreConfig contains in-memory store configuration
type StoreConfig struct {
	ShardCount int
}

// IntegrationConfig selects the collaborators wired around the core
type IntegrationConfig struct {
	AccountSeedSource string
	AuditSink         string
	EventPublisher    string
	TransactionIntake string
}

// KafkaConfig contains Kafka configuration for post-processing events
type KafkaConfig struct {
	Brokers           string
	RiskTopic         string
	NotificationTopic string
	NumPartitions     int
	ReplicationFactor int
	WriteTimeout      time.Duration

	// Request intake, only used when TransactionIntake is kafka
	RequestTopic  string
	ConsumerGroup string
	DLQTopic      string // Optional; rejected requests are only logged when empty
	MinBytes      int
	MaxBytes      int
	MaxWait       time.Duration
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// SettlementWait returns how long a create call may wait for the settlement stage.
// transactionTimeoutSeconds takes precedence over the worker pool default when set.
func (c *Config) SettlementWait() time.Duration {
	if c.Limits.TransactionTimeoutSeconds > 0 {
		return time.Duration(c.Limits.TransactionTimeoutSeconds) * time.Second
	}
	return c.WorkerPool.SettlementWait
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate limits
	validationErrors = append(validationErrors, c.Limits.validate()...)

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}
	if c.WorkerPool.FetcherConcurrency <= 0 {
		validationErrors = append(validationErrors, "FETCHER_CONCURRENCY must be greater than 0")
	}
	if c.WorkerPool.SettlementWait < 0 {
		validationErrors = append(validationErrors, "SETTLEMENT_WAIT must not be negative")
	}

	if c.Store.ShardCount <= 0 {
		validationErrors = append(validationErrors, "STORE_SHARD_COUNT must be greater than 0")
	}

	switch c.Integration.AccountSeedSource {
	case SeedSourceBuiltin:
	case SeedSourcePostgres:
		validationErrors = append(validationErrors, c.Postgres.validate()...)
	default:
		validationErrors = append(validationErrors, "ACCOUNT_SEED_SOURCE must be one of builtin, postgres")
	}

	switch c.Integration.AuditSink {
	case AuditSinkLog:
	case AuditSinkMongo:
		validationErrors = append(validationErrors, c.MongoDB.validate()...)
	default:
		validationErrors = append(validationErrors, "AUDIT_SINK must be one of log, mongo")
	}

	switch c.Integration.EventPublisher {
	case EventPublisherLog:
	case EventPublisherKafka:
		validationErrors = append(validationErrors, c.Kafka.validate()...)
	default:
		validationErrors = append(validationErrors, "EVENT_PUBLISHER must be one of log, kafka")
	}

	switch c.Integration.TransactionIntake {
	case TransactionIntakeNone:
	case TransactionIntakeKafka:
		validationErrors = append(validationErrors, c.Kafka.validateIntake()...)
	default:
		validationErrors = append(validationErrors, "TRANSACTION_INTAKE must be one of none, kafka")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (l LimitConfig) validate() []string {
	var validationErrors []string

	checkNonNegative := func(name string, value *decimal.Decimal) {
		if value != nil && value.IsNegative() {
			validationErrors = append(validationErrors, name+" must not be negative")
		}
	}
	checkNonNegative("LIMIT_MINIMUM_TRANSACTION_AMOUNT", l.MinimumTransactionAmount)
	checkNonNegative("LIMIT_SINGLE_TRANSACTION", l.SingleTransactionLimit)
	checkNonNegative("LIMIT_DAILY_TRANSACTION", l.DailyTransactionLimit)
	checkNonNegative("LIMIT_MONTHLY_TRANSACTION", l.MonthlyTransactionLimit)
	checkNonNegative("LIMIT_LARGE_AMOUNT_THRESHOLD", l.LargeAmountThreshold)
	checkNonNegative("LIMIT_LOW_BALANCE_THRESHOLD", l.LowBalanceThreshold)

	if l.MinimumTransactionAmount != nil && l.SingleTransactionLimit != nil &&
		l.MinimumTransactionAmount.GreaterThan(*l.SingleTransactionLimit) {
		validationErrors = append(validationErrors, "LIMIT_MINIMUM_TRANSACTION_AMOUNT must not exceed LIMIT_SINGLE_TRANSACTION")
	}
	if l.TransactionTimeoutSeconds < 0 {
		validationErrors = append(validationErrors, "LIMIT_TRANSACTION_TIMEOUT_SECONDS must not be negative")
	}
	if l.MaxRetryCount < 0 {
		validationErrors = append(validationErrors, "LIMIT_MAX_RETRY_COUNT must not be negative")
	}

	return validationErrors
}

func (p PostgresConfig) validate() []string {
	var validationErrors []string
	if p.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if p.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if p.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if p.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if p.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return validationErrors
}

func (m MongoDBConfig) validate() []string {
	var validationErrors []string
	if m.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if m.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if m.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if m.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if m.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return validationErrors
}

func (k KafkaConfig) validate() []string {
	var validationErrors []string
	if k.Brokers == "" {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if k.RiskTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_RISK_TOPIC is required")
	}
	if k.NotificationTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_NOTIFICATION_TOPIC is required")
	}
	if k.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
	}
	return validationErrors
}

func (k KafkaConfig) validateIntake() []string {
	var validationErrors []string
	if k.Brokers == "" {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if k.RequestTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_REQUEST_TOPIC is required")
	}
	if k.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if k.MinBytes <= 0 || k.MaxBytes < k.MinBytes {
		validationErrors = append(validationErrors, "KAFKA_MIN_BYTES must be positive and not exceed KAFKA_MAX_BYTES")
	}
	if k.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_MAX_WAIT must be greater than 0")
	}
	return validationErrors
}
