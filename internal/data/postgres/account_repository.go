// Package postgres provides the PostgreSQL account seed source.
// Accounts are read once at start-up and then owned by the in-memory ledger.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const selectAccounts = `
		SELECT a.account_id, a.account_number, a.account_name, b.bank_id, b.bank_name,
		       a.balance::text, a.currency, a.status
		FROM accounts a
		JOIN banks b ON b.bank_id = a.bank_id
	`

// AccountRepository implements account.Source for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Source {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// LoadAll reads every account, ordered by id
func (r *AccountRepository) LoadAll(ctx context.Context) ([]*account.Account, error) {
	rows, err := r.querier.Query(ctx, selectAccounts+"ORDER BY a.account_id")
	if err != nil {
		r.logger.Error("Failed to query accounts", "error", err)
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account row", "error", err)
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating account rows", "error", err)
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	r.logger.Info("Loaded accounts from PostgreSQL", "count", len(accounts))
	return accounts, nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		id, number, name, bankID, bankName, balance, currency, status string
	)
	if err := row.Scan(&id, &number, &name, &bankID, &bankName, &balance, &currency, &status); err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q for account %s: %w", balance, id, err)
	}

	acc, err := account.NewAccount(id, number, name,
		account.Bank{ID: bankID, Name: bankName},
		amount, shared.Currency(currency), account.Status(status))
	if err != nil {
		return nil, fmt.Errorf("invalid account %s: %w", id, err)
	}
	return acc, nil
}
