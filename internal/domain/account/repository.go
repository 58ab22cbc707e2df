package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger owns account records and performs atomic balance adjustments.
// Returned accounts are snapshots; mutating them never changes ledger state.
type Ledger interface {
	Get(ctx context.Context, accountID string) (*Account, error)
	Exists(ctx context.Context, accountID string) bool
	// AdjustBalance applies delta atomically with respect to other adjustments on the same account
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*Account, error)
	Register(ctx context.Context, account *Account) error
	List(ctx context.Context) ([]*Account, error)
}

// Source loads the accounts that seed the ledger at start-up
type Source interface {
	LoadAll(ctx context.Context) ([]*Account, error)
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID string
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID
}

// Is implements the errors.Is interface for ErrAccountNotFound
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == "" {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrInsufficientFunds indicates an adjustment that would drive the balance below zero
type ErrInsufficientFunds struct {
	AccountID string
	Balance   decimal.Decimal
	Delta     decimal.Decimal
}

func (e ErrInsufficientFunds) Error() string {
	return "insufficient funds in account " + e.AccountID + ": balance " + e.Balance.String() + ", adjustment " + e.Delta.String()
}

// Is implements the errors.Is interface for ErrInsufficientFunds
func (e ErrInsufficientFunds) Is(target error) bool {
	t, ok := target.(ErrInsufficientFunds)
	if !ok {
		return false
	}
	if t.AccountID == "" {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrDuplicateAccount indicates account id uniqueness violation
type ErrDuplicateAccount struct {
	AccountID string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists: " + e.AccountID
}

// Is implements the errors.Is interface for ErrDuplicateAccount
func (e ErrDuplicateAccount) Is(target error) bool {
	t, ok := target.(ErrDuplicateAccount)
	if !ok {
		return false
	}
	if t.AccountID == "" {
		return true
	}
	return e.AccountID == t.AccountID
}
