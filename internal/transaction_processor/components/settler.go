package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
)

// SettlerImpl implements the Settler interface
type SettlerImpl struct {
	accounts            service.AccountService
	store               transaction.Store
	lowBalanceThreshold *decimal.Decimal
	logger              *slog.Logger
}

// NewSettler creates a new SettlerImpl
func NewSettler(accounts service.AccountService, store transaction.Store, limits config.LimitConfig, logger *slog.Logger) service.Settler {
	return &SettlerImpl{
		accounts:            accounts,
		store:               store,
		lowBalanceThreshold: limits.LowBalanceThreshold,
		logger:              logger,
	}
}

// Settle applies the balance deltas implied by the transaction type and flips the
// status to Completed, or to Failed when the ledger rejects an adjustment.
// Non-pending transactions are returned untouched.
func (s *SettlerImpl) Settle(ctx context.Context, txn *transaction.Transaction) (*transaction.Transaction, []event.LowBalanceAlert, error) {
	logger := s.logger
	if correlationID := shared.CorrelationID(ctx); correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	if txn.Status != shared.TransactionStatusPending {
		logger.Debug("Skipping settlement of non-pending transaction", "transaction_id", txn.ID, "status", txn.Status)
		return txn, nil, nil
	}

	alerts, err := s.applyBalances(ctx, logger, txn)
	status := shared.TransactionStatusCompleted
	if err != nil {
		logger.Warn("Settlement rejected, marking transaction failed",
			"transaction_id", txn.ID,
			"type", txn.Type,
			"error", err,
		)
		status = shared.TransactionStatusFailed
		alerts = nil
	}

	// Only the status is written back so a concurrent remark update is preserved.
	saved, err := s.store.Update(ctx, txn.ID, func(current *transaction.Transaction) error {
		current.Status = status
		return nil
	})
	if err != nil {
		logger.Error("Failed to persist settlement outcome", "transaction_id", txn.ID, "status", status, "error", err)
		return nil, nil, fmt.Errorf("failed to persist settlement of transaction %s: %w", txn.ID, err)
	}
	logger.Info("Transaction settled", "transaction_id", saved.ID, "status", saved.Status)

	return saved, alerts, nil
}

func (s *SettlerImpl) applyBalances(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction) ([]event.LowBalanceAlert, error) {
	amount := txn.Amount

	switch txn.Type {
	case shared.TransactionTypeDeposit:
		if txn.ToAccountID == "" {
			return nil, nil
		}
		if _, err := s.accounts.AdjustAccountBalance(ctx, txn.ToAccountID, amount); err != nil {
			return nil, err
		}
		logger.Info("Deposit credited", "transaction_id", txn.ID, "account_id", txn.ToAccountID, "amount", amount.String())
		return nil, nil

	case shared.TransactionTypeWithdrawal:
		if txn.FromAccountID == "" {
			return nil, nil
		}
		debited, err := s.accounts.AdjustAccountBalance(ctx, txn.FromAccountID, amount.Neg())
		if err != nil {
			return nil, err
		}
		logger.Info("Withdrawal debited", "transaction_id", txn.ID, "account_id", txn.FromAccountID, "amount", amount.String())
		return s.lowBalanceAlerts(logger, debited), nil

	case shared.TransactionTypeTransfer:
		debited, err := s.accounts.AdjustAccountBalance(ctx, txn.FromAccountID, amount.Neg())
		if err != nil {
			return nil, err
		}
		if _, err := s.accounts.AdjustAccountBalance(ctx, txn.ToAccountID, amount); err != nil {
			// Reverse the debit leg so a rejected credit never loses funds.
			if _, reverseErr := s.accounts.AdjustAccountBalance(ctx, txn.FromAccountID, amount); reverseErr != nil {
				logger.Error("Failed to reverse transfer debit",
					"transaction_id", txn.ID,
					"account_id", txn.FromAccountID,
					"amount", amount.String(),
					"error", reverseErr,
				)
				return nil, errors.Join(err, reverseErr)
			}
			logger.Warn("Transfer credit rejected, debit reversed", "transaction_id", txn.ID, "account_id", txn.ToAccountID)
			return nil, err
		}
		logger.Info("Transfer settled",
			"transaction_id", txn.ID,
			"from_account_id", txn.FromAccountID,
			"to_account_id", txn.ToAccountID,
			"amount", amount.String(),
		)
		return s.lowBalanceAlerts(logger, debited), nil

	default:
		// Payment and Refund are booked without a balance effect.
		return nil, nil
	}
}

func (s *SettlerImpl) lowBalanceAlerts(logger *slog.Logger, acc *account.Account) []event.LowBalanceAlert {
	if s.lowBalanceThreshold == nil || acc == nil || !acc.Balance.LessThan(*s.lowBalanceThreshold) {
		return nil
	}
	logger.Warn("Account balance below threshold",
		"account_id", acc.AccountID,
		"balance", acc.Balance.String(),
		"threshold", s.lowBalanceThreshold.String(),
	)
	return []event.LowBalanceAlert{{
		AccountID: acc.AccountID,
		Balance:   acc.Balance.String(),
		Threshold: s.lowBalanceThreshold.String(),
	}}
}
