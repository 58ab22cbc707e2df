package components

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher mocks the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, msg *event.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func ofKind(kind event.Kind) any {
	return mock.MatchedBy(func(msg *event.Message) bool { return msg.Kind == kind })
}

func TestRiskCheckTrigger_Trigger(t *testing.T) {
	ctx := context.Background()
	txn := pendingTxn(shared.TransactionTypeTransfer, "20000", "A", "B")

	t.Run("PublishesLargeAmountFlag", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		trigger := newRiskCheckTrigger(publisher, 3, 0, logger.Discard())

		publisher.On("Publish", ctx, mock.MatchedBy(func(msg *event.Message) bool {
			var payload event.RiskCheck
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return false
			}
			return msg.Kind == event.KindRiskCheck &&
				msg.TransactionID == txn.ID &&
				payload.LargeAmount &&
				payload.Amount == "20000"
		})).Return(nil).Once()

		require.NoError(t, trigger.Trigger(ctx, txn, shared.OperationCreate, true))
		publisher.AssertExpectations(t)
	})

	t.Run("RetriesUntilDelivered", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		trigger := newRiskCheckTrigger(publisher, 3, 0, logger.Discard())

		publisher.On("Publish", ctx, ofKind(event.KindRiskCheck)).Return(errors.New("broker busy")).Twice()
		publisher.On("Publish", ctx, ofKind(event.KindRiskCheck)).Return(nil).Once()

		require.NoError(t, trigger.Trigger(ctx, txn, shared.OperationCreate, false))
		publisher.AssertNumberOfCalls(t, "Publish", 3)
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		trigger := newRiskCheckTrigger(publisher, 2, 0, logger.Discard())
		publishErr := errors.New("broker down")

		publisher.On("Publish", ctx, ofKind(event.KindRiskCheck)).Return(publishErr)

		err := trigger.Trigger(ctx, txn, shared.OperationCreate, false)
		assert.ErrorIs(t, err, publishErr)
		publisher.AssertNumberOfCalls(t, "Publish", 3)
	})

	t.Run("ZeroRetriesMeansSingleAttempt", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		trigger := newRiskCheckTrigger(publisher, 0, 0, logger.Discard())

		publisher.On("Publish", ctx, ofKind(event.KindRiskCheck)).Return(errors.New("broker down"))

		assert.Error(t, trigger.Trigger(ctx, txn, shared.OperationCreate, false))
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("CancelledContextStopsRetrying", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		trigger := newRiskCheckTrigger(publisher, 5, 0, logger.Discard())
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		publisher.On("Publish", cancelled, ofKind(event.KindRiskCheck)).Return(errors.New("broker down"))

		err := trigger.Trigger(cancelled, txn, shared.OperationCreate, false)
		assert.ErrorIs(t, err, context.Canceled)
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})
}

func TestNotifier_Notify(t *testing.T) {
	ctx := context.Background()
	txn := pendingTxn(shared.TransactionTypeWithdrawal, "450", "A", "")
	alerts := []event.LowBalanceAlert{{AccountID: "A", Balance: "50", Threshold: "100"}}

	t.Run("CarriesLowBalanceAlerts", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		notifier := newNotifier(publisher, 0, 0, logger.Discard())

		publisher.On("Publish", ctx, mock.MatchedBy(func(msg *event.Message) bool {
			var payload event.Notification
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return false
			}
			return msg.Kind == event.KindNotification &&
				payload.Operation == shared.OperationCreate &&
				len(payload.LowBalance) == 1 &&
				payload.LowBalance[0].AccountID == "A"
		})).Return(nil).Once()

		require.NoError(t, notifier.Notify(ctx, txn, shared.OperationCreate, alerts))
		publisher.AssertExpectations(t)
	})

	t.Run("IgnoresOtherOperations", func(t *testing.T) {
		publisher := new(MockEventPublisher)
		notifier := newNotifier(publisher, 0, 0, logger.Discard())

		require.NoError(t, notifier.Notify(ctx, txn, shared.Operation("DELETE"), nil))
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
