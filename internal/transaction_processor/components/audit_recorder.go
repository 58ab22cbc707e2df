package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

type AuditRecorderImpl struct {
	sink   service.AuditWriter
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditRecorder(sink service.AuditWriter, logger *slog.Logger) service.AuditRecorder {
	return &AuditRecorderImpl{
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

// Record writes one audit record for the operation applied to txn
func (r *AuditRecorderImpl) Record(ctx context.Context, txn *transaction.Transaction, op shared.Operation) error {
	correlationID := shared.CorrelationID(ctx)
	logger := r.logger
	if correlationID != "" {
		logger = r.logger.With("correlation_id", correlationID)
	}

	record := transaction.NewAuditRecord(txn, op, correlationID, r.now())
	if err := r.sink.Create(ctx, record); err != nil {
		logger.Error("Failed to record audit", "transaction_id", txn.ID, "operation", op, "error", err)
		return fmt.Errorf("failed to record audit for transaction %s: %w", txn.ID, err)
	}

	logger.Debug("Audit recorded", "transaction_id", txn.ID, "operation", op)
	return nil
}
