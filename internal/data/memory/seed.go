package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var (
	bankICBC = account.Bank{ID: "BANK001", Name: "中国工商银行"}
	bankCCB  = account.Bank{ID: "BANK002", Name: "中国建设银行"}
	bankABC  = account.Bank{ID: "BANK003", Name: "中国农业银行"}
)

// BuiltinSource serves the fixed demonstration accounts
type BuiltinSource struct{}

func NewBuiltinSource() *BuiltinSource {
	return &BuiltinSource{}
}

func (BuiltinSource) LoadAll(_ context.Context) ([]*account.Account, error) {
	return []*account.Account{
		{AccountID: "ACC001", AccountNumber: "6222021234567890", AccountName: "张三", Bank: bankICBC, Balance: decimal.NewFromInt(10000), Currency: shared.CurrencyCNY, Status: account.StatusActive},
		{AccountID: "ACC002", AccountNumber: "6222021234567891", AccountName: "李四", Bank: bankCCB, Balance: decimal.NewFromInt(5000), Currency: shared.CurrencyCNY, Status: account.StatusActive},
		{AccountID: "ACC003", AccountNumber: "6222021234567892", AccountName: "王五", Bank: bankICBC, Balance: decimal.NewFromInt(8000), Currency: shared.CurrencyCNY, Status: account.StatusActive},
		{AccountID: "ACC004", AccountNumber: "6222021234567893", AccountName: "赵六", Bank: bankABC, Balance: decimal.NewFromInt(12000), Currency: shared.CurrencyCNY, Status: account.StatusActive},
		{AccountID: "ACC005", AccountNumber: "6222021234567894", AccountName: "孙七", Bank: bankCCB, Balance: decimal.NewFromInt(3000), Currency: shared.CurrencyCNY, Status: account.StatusFrozen},
	}, nil
}

// Seed loads every account from source into ledger
func Seed(ctx context.Context, ledger account.Ledger, source account.Source, logger *slog.Logger) error {
	accounts, err := source.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seed accounts: %w", err)
	}

	for _, acc := range accounts {
		if err := ledger.Register(ctx, acc); err != nil {
			return fmt.Errorf("failed to register account %s: %w", acc.AccountID, err)
		}
	}

	logger.Info("account ledger seeded", "accounts", len(accounts))
	return nil
}
