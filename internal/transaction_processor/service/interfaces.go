package service

import (
	"context"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TransactionService is the transaction orchestrator exposed to the transport layer.
// Every returned error is a *shared.Failure.
type TransactionService interface {
	CreateTransaction(ctx context.Context, candidate *transaction.Transaction) (*transaction.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch transaction.RemarkPatch) (*transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error)
	ListTransactions(ctx context.Context, page, size int) (*transaction.Page, error)
}

// AccountService exposes account lookups and the balance adjustment used by settlement
type AccountService interface {
	GetAccount(ctx context.Context, accountID string) (*account.Account, error)
	AdjustAccountBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*account.Account, error)
	ListAccounts(ctx context.Context) ([]*account.Account, error)
	GetAccountTransactions(ctx context.Context, accountID string) ([]*transaction.Transaction, error)
}

// IDGenerator produces the identifiers assigned at creation
type IDGenerator interface {
	TransactionID() string
	ReferenceNumber() string
	IdempotencyKey() string
}

// DebitUsage is the debit volume the source account already booked in the current day and month
type DebitUsage struct {
	Daily   decimal.Decimal
	Monthly decimal.Decimal
}

// ValidationResult carries the advisory signals raised by an accepted candidate
type ValidationResult struct {
	LargeAmount bool
}

// TransactionValidator runs the ordered business checks over a resolved candidate.
// It reads only its arguments and the limit configuration.
type TransactionValidator interface {
	Validate(candidate *transaction.Transaction, usage DebitUsage) (ValidationResult, error)
}

// Settler applies the balance effects of a pending transaction and records the outcome
type Settler interface {
	Settle(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, []event.LowBalanceAlert, error)
}

// AuditWriter is the sink audit records are written to
type AuditWriter interface {
	Create(ctx context.Context, record *transaction.AuditRecord) error
}

// AuditRecorder produces the audit message for a processed transaction
type AuditRecorder interface {
	Record(ctx context.Context, txn *transaction.Transaction, op shared.Operation) error
}

// EventPublisher delivers post-processing events
type EventPublisher interface {
	Publish(ctx context.Context, msg *event.Message) error
}

// RiskCheckTrigger fires the advisory risk check for a transaction
type RiskCheckTrigger interface {
	Trigger(ctx context.Context, txn *transaction.Transaction, op shared.Operation, largeAmount bool) error
}

// Notifier fans a processed transaction out to the notification sink
type Notifier interface {
	Notify(ctx context.Context, txn *transaction.Transaction, op shared.Operation, alerts []event.LowBalanceAlert) error
}

// PostProcessingJob is one pipeline run for a created or updated transaction
type PostProcessingJob struct {
	Transaction *transaction.Transaction
	Operation   shared.Operation
	LargeAmount bool
}

// PostProcessor runs the post-processing pipeline off the caller's goroutine.
// The returned channel is closed once the settlement stage has finished.
type PostProcessor interface {
	Submit(ctx context.Context, job PostProcessingJob) (<-chan struct{}, error)
}
