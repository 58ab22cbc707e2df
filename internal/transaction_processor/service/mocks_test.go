package service

import (
	"context"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/stretchr/testify/mock"
)

// MockIDGenerator mocks the IDGenerator interface
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) TransactionID() string {
	return m.Called().String(0)
}

func (m *MockIDGenerator) ReferenceNumber() string {
	return m.Called().String(0)
}

func (m *MockIDGenerator) IdempotencyKey() string {
	return m.Called().String(0)
}

// MockTransactionValidator mocks the TransactionValidator interface
type MockTransactionValidator struct {
	mock.Mock
}

func (m *MockTransactionValidator) Validate(candidate *transaction.Transaction, usage DebitUsage) (ValidationResult, error) {
	args := m.Called(candidate, usage)
	return args.Get(0).(ValidationResult), args.Error(1)
}

// MockPostProcessor mocks the PostProcessor interface
type MockPostProcessor struct {
	mock.Mock
}

func (m *MockPostProcessor) Submit(ctx context.Context, job PostProcessingJob) (<-chan struct{}, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan struct{}), args.Error(1)
}

// MockSettler mocks the Settler interface
type MockSettler struct {
	mock.Mock
}

func (m *MockSettler) Settle(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, []event.LowBalanceAlert, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var alerts []event.LowBalanceAlert
	if a := args.Get(1); a != nil {
		alerts = a.([]event.LowBalanceAlert)
	}
	return args.Get(0).(*transaction.Transaction), alerts, args.Error(2)
}

// MockAuditRecorder mocks the AuditRecorder interface
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, txn *transaction.Transaction, op shared.Operation) error {
	args := m.Called(ctx, txn, op)
	return args.Error(0)
}

// MockRiskCheckTrigger mocks the RiskCheckTrigger interface
type MockRiskCheckTrigger struct {
	mock.Mock
}

func (m *MockRiskCheckTrigger) Trigger(ctx context.Context, txn *transaction.Transaction, op shared.Operation, largeAmount bool) error {
	args := m.Called(ctx, txn, op, largeAmount)
	return args.Error(0)
}

// MockNotifier mocks the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, txn *transaction.Transaction, op shared.Operation, alerts []event.LowBalanceAlert) error {
	args := m.Called(ctx, txn, op, alerts)
	return args.Error(0)
}
