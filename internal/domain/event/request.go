package event

import (
	"strings"
	"unicode/utf8"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// TransactionRequest is a create request delivered over the message broker.
// IdempotencyKey should be set by the producer so redeliveries are recognised.
type TransactionRequest struct {
	CorrelationID   string          `json:"correlation_id,omitempty"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Channel         string          `json:"channel"`
	FromAccountID   string          `json:"from_account_id,omitempty"`
	ToAccountID     string          `json:"to_account_id,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	InitiatedBy     string          `json:"initiated_by,omitempty"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
}

// Request field bounds shared with the REST binding
const (
	maxChannelLength = 32
	maxKeyLength     = 64
)

// Validate applies the same field checks the REST binding does, so broker
// requests cannot carry values the HTTP surface would refuse.
func (r *TransactionRequest) Validate() error {
	if strings.TrimSpace(r.Type) == "" {
		return shared.NewValidationFailure("type is required")
	}
	if !r.Amount.IsPositive() {
		return shared.NewValidationFailure("amount must be positive")
	}
	currency := shared.Currency(strings.ToUpper(strings.TrimSpace(r.Currency)))
	if !currency.Valid() {
		return shared.NewValidationFailure("unsupported currency: %s", r.Currency)
	}
	channel := strings.TrimSpace(r.Channel)
	if channel == "" {
		return shared.NewValidationFailure("channel is required")
	}
	if utf8.RuneCountInString(channel) > maxChannelLength {
		return shared.NewValidationFailure("channel must not exceed %d characters", maxChannelLength)
	}
	if utf8.RuneCountInString(r.Remark) > transaction.MaxRemarkLength {
		return shared.NewValidationFailure("remark must not exceed %d characters", transaction.MaxRemarkLength)
	}
	if utf8.RuneCountInString(r.ReferenceNumber) > maxKeyLength {
		return shared.NewValidationFailure("reference_number must not exceed %d characters", maxKeyLength)
	}
	if utf8.RuneCountInString(r.IdempotencyKey) > maxKeyLength {
		return shared.NewValidationFailure("idempotency_key must not exceed %d characters", maxKeyLength)
	}
	return nil
}

// ToTransaction builds the candidate handed to the transaction service
func (r *TransactionRequest) ToTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		Type:            shared.TransactionType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Amount:          r.Amount,
		Currency:        shared.Currency(strings.ToUpper(strings.TrimSpace(r.Currency))),
		Channel:         r.Channel,
		FromAccountID:   r.FromAccountID,
		ToAccountID:     r.ToAccountID,
		Remark:          r.Remark,
		ReferenceNumber: r.ReferenceNumber,
		IdempotencyKey:  r.IdempotencyKey,
		InitiatedBy:     r.InitiatedBy,
		ApprovedBy:      r.ApprovedBy,
	}
}
