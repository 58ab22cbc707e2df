package components

import (
	"context"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/transaction"
)

// LogAuditSink writes audit records to the structured log when no audit store is configured
type LogAuditSink struct {
	logger *slog.Logger
}

func NewLogAuditSink(logger *slog.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger.With("component", "audit_log")}
}

func (s *LogAuditSink) Create(_ context.Context, record *transaction.AuditRecord) error {
	s.logger.Info("Transaction audit",
		"transaction_id", record.TransactionID,
		"operation", record.Operation,
		"type", record.Type,
		"status", record.Status,
		"amount", record.Amount,
		"currency", record.Currency,
		"from_account_id", record.FromAccountID,
		"to_account_id", record.ToAccountID,
		"correlation_id", record.CorrelationID,
		"recorded_at", record.RecordedAt,
	)
	return nil
}

// LogEventPublisher writes events to the structured log when no broker is configured
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With("component", "event_log")}
}

func (p *LogEventPublisher) Publish(_ context.Context, msg *event.Message) error {
	p.logger.Info("Post-processing event",
		"kind", msg.Kind,
		"transaction_id", msg.TransactionID,
		"operation", msg.Operation,
		"payload", string(msg.Payload),
	)
	return nil
}

func (p *LogEventPublisher) Close() error {
	return nil
}
