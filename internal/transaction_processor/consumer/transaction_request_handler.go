package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/platform/messaging/producers"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

// TransactionRequestHandler turns broker messages into create calls
type TransactionRequestHandler struct {
	transactions service.TransactionService
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

// NewTransactionRequestHandler creates a new handler. producer may be nil,
// in which case rejected requests are logged and dropped.
func NewTransactionRequestHandler(
	logger *slog.Logger,
	transactions service.TransactionService,
	producer producers.DeadLetterPublisher,
) *TransactionRequestHandler {
	return &TransactionRequestHandler{
		transactions: transactions,
		producer:     producer,
		logger:       logger.With("component", "transaction_request_handler"),
	}
}

// HandleMessage returns an error only when the message should be retried.
// Malformed and rejected requests are parked on the DLQ and acknowledged.
func (h *TransactionRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request event.TransactionRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal transaction request",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, fmt.Sprintf("malformed request: %s", err.Error()))
	}

	logger := h.logger
	if request.CorrelationID != "" {
		ctx = shared.WithCorrelationID(ctx, request.CorrelationID)
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received transaction request",
		"idempotency_key", request.IdempotencyKey,
		"type", request.Type,
		"amount", request.Amount.String(),
	)

	if err := request.Validate(); err != nil {
		failure := shared.AsFailure(err)
		logger.Warn("Transaction request rejected", "kind", failure.Kind, "reason", failure.Message)
		return h.deadLetter(ctx, key, value, failure.Message)
	}

	txn, err := h.transactions.CreateTransaction(ctx, request.ToTransaction())
	if err != nil {
		failure := shared.AsFailure(err)
		switch failure.Kind {
		case shared.FailureKindSystem:
			logger.Error("Transaction request failed, will retry", "error", err)
			return fmt.Errorf("processing request %s failed: %w", string(key), err)
		case shared.FailureKindConflict:
			logger.Info("Duplicate transaction request ignored", "idempotency_key", request.IdempotencyKey)
			return nil
		default:
			logger.Warn("Transaction request rejected", "kind", failure.Kind, "reason", failure.Message)
			return h.deadLetter(ctx, key, value, failure.Message)
		}
	}

	logger.Info("Transaction request processed",
		"transaction_id", txn.ID,
		"status", txn.Status,
	)
	return nil
}

func (h *TransactionRequestHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	if h.producer == nil {
		return nil
	}
	if err := h.producer.PublishToDLQ(ctx, string(key), value, reason); err != nil {
		return fmt.Errorf("failed to park request %s on DLQ: %w", string(key), err)
	}
	return nil
}
