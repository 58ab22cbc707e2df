package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

const publishRetryBackoff = 200 * time.Millisecond

// eventDispatcher publishes a message, retrying up to maxRetries times with linear backoff
type eventDispatcher struct {
	publisher  service.EventPublisher
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

func (d *eventDispatcher) dispatch(ctx context.Context, msg *event.Message) error {
	logger := d.logger
	if correlationID := shared.CorrelationID(ctx); correlationID != "" {
		logger = d.logger.With("correlation_id", correlationID)
	}

	var err error
	for {
		msg.IncrementAttempts()
		if err = d.publisher.Publish(ctx, msg); err == nil {
			msg.MarkAsDelivered()
			logger.Debug("Event dispatched", "kind", msg.Kind, "transaction_id", msg.TransactionID, "attempts", msg.Attempts)
			return nil
		}
		if msg.Attempts > d.maxRetries {
			break
		}

		logger.Warn("Event publish failed, retrying",
			"kind", msg.Kind,
			"transaction_id", msg.TransactionID,
			"attempt", msg.Attempts,
			"error", err,
		)
		if waitErr := d.wait(ctx, msg.Attempts); waitErr != nil {
			msg.MarkAsFailed()
			return fmt.Errorf("dispatch of %s event for transaction %s cancelled: %w", msg.Kind, msg.TransactionID, waitErr)
		}
	}

	msg.MarkAsFailed()
	return fmt.Errorf("failed to dispatch %s event for transaction %s after %d attempts: %w",
		msg.Kind, msg.TransactionID, msg.Attempts, err)
}

func (d *eventDispatcher) wait(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(d.backoff * time.Duration(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RiskCheckTriggerImpl implements the RiskCheckTrigger interface
type RiskCheckTriggerImpl struct {
	dispatcher *eventDispatcher
}

func NewRiskCheckTrigger(publisher service.EventPublisher, limits config.LimitConfig, logger *slog.Logger) service.RiskCheckTrigger {
	return newRiskCheckTrigger(publisher, limits.MaxRetryCount, publishRetryBackoff, logger)
}

func newRiskCheckTrigger(publisher service.EventPublisher, maxRetries int, backoff time.Duration, logger *slog.Logger) *RiskCheckTriggerImpl {
	return &RiskCheckTriggerImpl{
		dispatcher: &eventDispatcher{
			publisher:  publisher,
			maxRetries: maxRetries,
			backoff:    backoff,
			logger:     logger,
		},
	}
}

// Trigger publishes the advisory risk check keyed by transaction id
func (r *RiskCheckTriggerImpl) Trigger(ctx context.Context, txn *transaction.Transaction, op shared.Operation, largeAmount bool) error {
	msg, err := event.NewMessage(event.KindRiskCheck, txn.ID, op, event.NewRiskCheck(txn, largeAmount))
	if err != nil {
		return fmt.Errorf("failed to build risk check for transaction %s: %w", txn.ID, err)
	}
	return r.dispatcher.dispatch(ctx, msg)
}

// NotifierImpl implements the Notifier interface
type NotifierImpl struct {
	dispatcher *eventDispatcher
}

func NewNotifier(publisher service.EventPublisher, limits config.LimitConfig, logger *slog.Logger) service.Notifier {
	return newNotifier(publisher, limits.MaxRetryCount, publishRetryBackoff, logger)
}

func newNotifier(publisher service.EventPublisher, maxRetries int, backoff time.Duration, logger *slog.Logger) *NotifierImpl {
	return &NotifierImpl{
		dispatcher: &eventDispatcher{
			publisher:  publisher,
			maxRetries: maxRetries,
			backoff:    backoff,
			logger:     logger,
		},
	}
}

// Notify publishes a notification for created and updated transactions
func (n *NotifierImpl) Notify(ctx context.Context, txn *transaction.Transaction, op shared.Operation, alerts []event.LowBalanceAlert) error {
	if op != shared.OperationCreate && op != shared.OperationUpdate {
		return nil
	}
	msg, err := event.NewMessage(event.KindNotification, txn.ID, op, event.NewNotification(txn, op, alerts))
	if err != nil {
		return fmt.Errorf("failed to build notification for transaction %s: %w", txn.ID, err)
	}
	return n.dispatcher.dispatch(ctx, msg)
}
