package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/shopspring/decimal"
)

type accountEntry struct {
	mu      sync.Mutex
	account *account.Account
}

// AccountLedger is an in-memory account.Ledger.
// The map is guarded by an RWMutex; each account carries its own mutex so
// adjustments on different accounts never contend.
type AccountLedger struct {
	mu       sync.RWMutex
	accounts map[string]*accountEntry
	logger   *slog.Logger
}

// NewAccountLedger creates an empty ledger
func NewAccountLedger(logger *slog.Logger) *AccountLedger {
	return &AccountLedger{
		accounts: make(map[string]*accountEntry),
		logger:   logger.With("component", "account_ledger"),
	}
}

func (l *AccountLedger) entry(accountID string) (*accountEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.accounts[accountID]
	return e, ok
}

// Register adds a new account. Duplicate ids are rejected.
func (l *AccountLedger) Register(_ context.Context, acc *account.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[acc.AccountID]; exists {
		return account.ErrDuplicateAccount{AccountID: acc.AccountID}
	}
	l.accounts[acc.AccountID] = &accountEntry{account: acc.Snapshot()}
	return nil
}

func (l *AccountLedger) Get(_ context.Context, accountID string) (*account.Account, error) {
	e, ok := l.entry(accountID)
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: accountID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Snapshot(), nil
}

func (l *AccountLedger) Exists(_ context.Context, accountID string) bool {
	_, ok := l.entry(accountID)
	return ok
}

// AdjustBalance applies delta under the account's lock. A result below zero
// leaves the balance unchanged and returns account.ErrInsufficientFunds.
func (l *AccountLedger) AdjustBalance(_ context.Context, accountID string, delta decimal.Decimal) (*account.Account, error) {
	e, ok := l.entry(accountID)
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: accountID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.account.Apply(delta); err != nil {
		l.logger.Warn("balance adjustment rejected",
			"account_id", accountID,
			"balance", e.account.Balance.String(),
			"delta", delta.String())
		return nil, err
	}

	l.logger.Debug("balance adjusted",
		"account_id", accountID,
		"delta", delta.String(),
		"balance", e.account.Balance.String())
	return e.account.Snapshot(), nil
}

// List returns snapshots of every account ordered by id
func (l *AccountLedger) List(_ context.Context) ([]*account.Account, error) {
	l.mu.RLock()
	entries := make([]*accountEntry, 0, len(l.accounts))
	for _, e := range l.accounts {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	result := make([]*account.Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		result = append(result, e.account.Snapshot())
		e.mu.Unlock()
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID < result[j].AccountID
	})
	return result, nil
}
