package handler

import (
	"time"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest represents a request to create a new transaction.
// Amount accepts a JSON number or a decimal string.
type CreateTransactionRequest struct {
	Type            string          `json:"type" binding:"required,max=32"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" binding:"required,len=3"`
	Channel         string          `json:"channel" binding:"required,max=32"`
	FromAccountID   string          `json:"from_account_id,omitempty" binding:"omitempty,max=32"`
	ToAccountID     string          `json:"to_account_id,omitempty" binding:"omitempty,max=32"`
	Remark          string          `json:"remark,omitempty" binding:"omitempty,max=255"`
	ReferenceNumber string          `json:"reference_number,omitempty" binding:"omitempty,max=64"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty" binding:"omitempty,max=64"`
	InitiatedBy     string          `json:"initiated_by,omitempty" binding:"omitempty,max=64"`
	ApprovedBy      string          `json:"approved_by,omitempty" binding:"omitempty,max=64"`
}

// UpdateTransactionRequest carries the only mutable field. An absent remark leaves it unchanged.
type UpdateTransactionRequest struct {
	Remark *string `json:"remark" binding:"omitempty,max=255"`
}

// LegacyUpdateRequest is the POST /api/transactions/update body
type LegacyUpdateRequest struct {
	ID          string                   `json:"id" binding:"required,max=32"`
	Transaction UpdateTransactionRequest `json:"transaction"`
}

// LegacyIDRequest is the POST /api/transactions/delete body
type LegacyIDRequest struct {
	ID string `json:"id" binding:"required,max=32"`
}

// PaginationParams represents pagination parameters for list endpoints.
// Range checks belong to the transaction service.
type PaginationParams struct {
	Page int `form:"page,default=0"`
	Size int `form:"size,default=20"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Channel         string `json:"channel"`
	Direction       string `json:"direction"`
	ReferenceNumber string `json:"reference_number"`
	IdempotencyKey  string `json:"idempotency_key"`
	FromAccountID   string `json:"from_account_id,omitempty"`
	ToAccountID     string `json:"to_account_id,omitempty"`
	Remark          string `json:"remark,omitempty"`
	InitiatedBy     string `json:"initiated_by,omitempty"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankID        string `json:"bank_id"`
	BankName      string `json:"bank_name"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
}

func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              txn.ID,
		Type:            string(txn.Type),
		Status:          string(txn.Status),
		Amount:          txn.Amount.String(),
		Currency:        string(txn.Currency),
		Channel:         txn.Channel,
		Direction:       string(txn.Direction),
		ReferenceNumber: txn.ReferenceNumber,
		IdempotencyKey:  txn.IdempotencyKey,
		FromAccountID:   txn.FromAccountID,
		ToAccountID:     txn.ToAccountID,
		Remark:          txn.Remark,
		InitiatedBy:     txn.InitiatedBy,
		ApprovedBy:      txn.ApprovedBy,
		Timestamp:       txn.Timestamp.Format(time.RFC3339Nano),
	}
}

func mapTransactionsToResponse(txns []*transaction.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}
	return responses
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		AccountNumber: acc.AccountNumber,
		AccountName:   acc.AccountName,
		BankID:        acc.Bank.ID,
		BankName:      acc.Bank.Name,
		Balance:       acc.Balance.String(),
		Currency:      string(acc.Currency),
		Status:        string(acc.Status),
	}
}
