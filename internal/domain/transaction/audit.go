package transaction

import (
	"context"
	"time"

	"github.com/bank-transaction-engine/internal/domain/shared"
)

// AuditRecord is the message written for every create or update
type AuditRecord struct {
	TransactionID string                   `json:"transaction_id" bson:"transaction_id"`
	Operation     shared.Operation         `json:"operation" bson:"operation"`
	Type          shared.TransactionType   `json:"type" bson:"type"`
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	Amount        string                   `json:"amount" bson:"amount"`
	Currency      shared.Currency          `json:"currency" bson:"currency"`
	FromAccountID string                   `json:"from_account_id,omitempty" bson:"from_account_id,omitempty"`
	ToAccountID   string                   `json:"to_account_id,omitempty" bson:"to_account_id,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	RecordedAt    time.Time                `json:"recorded_at" bson:"recorded_at"`
}

// NewAuditRecord builds the audit message for txn
func NewAuditRecord(txn *Transaction, op shared.Operation, correlationID string, at time.Time) *AuditRecord {
	return &AuditRecord{
		TransactionID: txn.ID,
		Operation:     op,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		CorrelationID: correlationID,
		RecordedAt:    at.UTC(),
	}
}

// AuditRepository persists audit records
type AuditRepository interface {
	Create(ctx context.Context, record *AuditRecord) error
	GetByTransactionID(ctx context.Context, transactionID string) ([]*AuditRecord, error)
}
