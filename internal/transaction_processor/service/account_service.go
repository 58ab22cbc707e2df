package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	ledger account.Ledger
	store  transaction.Store
	logger *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(logger *slog.Logger, ledger account.Ledger, store transaction.Store) AccountService {
	return &AccountServiceImpl{
		ledger: ledger,
		store:  store,
		logger: logger,
	}
}

// GetAccount returns a snapshot of the account, or an InvalidAccount failure if it does not exist
func (s *AccountServiceImpl) GetAccount(ctx context.Context, accountID string) (*account.Account, error) {
	acc, err := s.ledger.Get(ctx, accountID)
	if err != nil {
		return nil, s.accountFailure(accountID, err)
	}
	return acc, nil
}

// AdjustAccountBalance applies delta atomically; a result below zero is refused with InsufficientFunds
func (s *AccountServiceImpl) AdjustAccountBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*account.Account, error) {
	acc, err := s.ledger.AdjustBalance(ctx, accountID, delta)
	if err != nil {
		if errors.Is(err, account.ErrInsufficientFunds{}) {
			return nil, shared.NewInsufficientFundsFailure(err, "insufficient balance in account %s", accountID)
		}
		return nil, s.accountFailure(accountID, err)
	}
	return acc, nil
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	accounts, err := s.ledger.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", "error", err)
		return nil, shared.NewSystemFailure(err)
	}
	return accounts, nil
}

// GetAccountTransactions returns every transaction touching the account, newest first
func (s *AccountServiceImpl) GetAccountTransactions(ctx context.Context, accountID string) ([]*transaction.Transaction, error) {
	if !s.ledger.Exists(ctx, accountID) {
		return nil, shared.NewInvalidAccountFailure(account.ErrAccountNotFound{AccountID: accountID}, "account not found: %s", accountID)
	}

	txns, err := s.store.GetByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to list account transactions", "account_id", accountID, "error", err)
		return nil, shared.NewSystemFailure(err)
	}
	return txns, nil
}

func (s *AccountServiceImpl) accountFailure(accountID string, err error) error {
	if errors.Is(err, account.ErrAccountNotFound{}) {
		return shared.NewInvalidAccountFailure(err, "account not found: %s", accountID)
	}
	s.logger.Error("Account ledger failure", "account_id", accountID, "error", err)
	return shared.NewSystemFailure(err)
}
