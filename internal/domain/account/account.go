package account

import (
	"errors"
	"strings"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyAccountID   = errors.New("account id cannot be empty")
	ErrNegativeBalance  = errors.New("balance cannot be negative")
	ErrInvalidCurrency  = errors.New("unsupported currency")
	ErrInvalidStatus    = errors.New("unknown account status")
	ErrEmptyAccountName = errors.New("account name cannot be empty")
)

// Status defines the lifecycle state of an account
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusFrozen    Status = "FROZEN"
	StatusClosed    Status = "CLOSED"
	StatusSuspended Status = "SUSPENDED"
)

// Valid reports whether s is a known account status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusFrozen, StatusClosed, StatusSuspended:
		return true
	}
	return false
}

// Bank identifies the institution holding an account
type Bank struct {
	ID   string `json:"bank_id"`
	Name string `json:"bank_name"`
}

// Account represents a bank account
type Account struct {
	AccountID     string          `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Bank          Bank            `json:"bank"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      shared.Currency `json:"currency"`
	Status        Status          `json:"status"`
}

// NewAccount creates a new account with the given parameters
func NewAccount(accountID, accountNumber, accountName string, bank Bank, balance decimal.Decimal, currency shared.Currency, status Status) (*Account, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, ErrEmptyAccountID
	}
	if strings.TrimSpace(accountName) == "" {
		return nil, ErrEmptyAccountName
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if !currency.Valid() {
		return nil, ErrInvalidCurrency
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	return &Account{
		AccountID:     accountID,
		AccountNumber: accountNumber,
		AccountName:   accountName,
		Bank:          bank,
		Balance:       balance,
		Currency:      currency,
		Status:        status,
	}, nil
}

// IsActive reports whether the account may be debited
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsClosed reports whether the account may no longer receive funds
func (a *Account) IsClosed() bool {
	return a.Status == StatusClosed
}

// Snapshot returns an independent copy of the account
func (a *Account) Snapshot() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Apply adds delta to the balance, refusing any change that would make it negative.
// The balance is left untouched on error.
func (a *Account) Apply(delta decimal.Decimal) error {
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return ErrInsufficientFunds{AccountID: a.AccountID, Balance: a.Balance, Delta: delta}
	}
	a.Balance = next
	return nil
}

// CanDebit reports whether the balance is strictly greater than amount.
// A debit of exactly the full balance is refused.
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThan(amount)
}
