package components

import (
	"errors"
	"testing"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/logger"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testAccount(id string, balance string, status account.Status) *account.Account {
	return &account.Account{
		AccountID:   id,
		AccountName: "Account " + id,
		Balance:     decimal.RequireFromString(balance),
		Currency:    shared.CurrencyCNY,
		Status:      status,
	}
}

func testLimits() config.LimitConfig {
	return config.LimitConfig{
		MinimumTransactionAmount: decimalPtr("0.01"),
		SingleTransactionLimit:   decimalPtr("50000"),
		DailyTransactionLimit:    decimalPtr("100000"),
		MonthlyTransactionLimit:  decimalPtr("1000000"),
		LargeAmountThreshold:     decimalPtr("10000"),
	}
}

func candidate(txnType shared.TransactionType, amount string, from, to *account.Account) *transaction.Transaction {
	txn := &transaction.Transaction{
		Type:     txnType,
		Amount:   decimal.RequireFromString(amount),
		Currency: shared.CurrencyCNY,
		Channel:  "ONLINE",
	}
	if from != nil {
		txn.FromAccountID = from.AccountID
		txn.FromAccount = from
	}
	if to != nil {
		txn.ToAccountID = to.AccountID
		txn.ToAccount = to
	}
	return txn
}

func TestTransactionValidator_Validate(t *testing.T) {
	validator := NewTransactionValidator(testLimits(), logger.Discard())

	active := func(id, balance string) *account.Account { return testAccount(id, balance, account.StatusActive) }

	tests := []struct {
		name      string
		candidate *transaction.Transaction
		usage     service.DebitUsage
		wantErr   error
		wantLarge bool
	}{
		{
			name:      "valid transfer",
			candidate: candidate(shared.TransactionTypeTransfer, "1000", active("A", "10000"), active("B", "5000")),
		},
		{
			name:      "valid deposit",
			candidate: candidate(shared.TransactionTypeDeposit, "100", nil, active("B", "0")),
		},
		{
			name:      "payment without accounts",
			candidate: candidate(shared.TransactionTypePayment, "100", nil, nil),
		},
		{
			name: "self reference",
			candidate: func() *transaction.Transaction {
				acc := active("A", "10000")
				return candidate(shared.TransactionTypeTransfer, "10", acc, acc)
			}(),
			wantErr: shared.ErrValidation,
		},
		{
			name:      "transfer missing destination",
			candidate: candidate(shared.TransactionTypeTransfer, "10", active("A", "10000"), nil),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "deposit missing destination",
			candidate: candidate(shared.TransactionTypeDeposit, "10", nil, nil),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "withdrawal missing source",
			candidate: candidate(shared.TransactionTypeWithdrawal, "10", nil, nil),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "unknown type",
			candidate: candidate("CHARGEBACK", "10", active("A", "10000"), nil),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "frozen source",
			candidate: candidate(shared.TransactionTypeWithdrawal, "10", testAccount("A", "10000", account.StatusFrozen), nil),
			wantErr:   shared.ErrInvalidAccount,
		},
		{
			name:      "closed destination",
			candidate: candidate(shared.TransactionTypeDeposit, "10", nil, testAccount("B", "0", account.StatusClosed)),
			wantErr:   shared.ErrInvalidAccount,
		},
		{
			name:      "frozen destination may still receive",
			candidate: candidate(shared.TransactionTypeDeposit, "10", nil, testAccount("B", "0", account.StatusFrozen)),
		},
		{
			name:      "withdrawal of the full balance",
			candidate: candidate(shared.TransactionTypeWithdrawal, "500", active("A", "500"), nil),
			wantErr:   shared.ErrInsufficientFunds,
		},
		{
			name:      "refund is not balance checked",
			candidate: candidate(shared.TransactionTypeRefund, "500", active("A", "0"), active("B", "0")),
		},
		{
			name:      "zero amount",
			candidate: candidate(shared.TransactionTypeRefund, "0", nil, active("B", "0")),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "below minimum",
			candidate: candidate(shared.TransactionTypeDeposit, "0.001", nil, active("B", "0")),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "above single limit",
			candidate: candidate(shared.TransactionTypeDeposit, "50000.01", nil, active("B", "0")),
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "daily limit exceeded",
			candidate: candidate(shared.TransactionTypeWithdrawal, "20000", active("A", "900000"), nil),
			usage:     service.DebitUsage{Daily: decimal.NewFromInt(90000), Monthly: decimal.NewFromInt(90000)},
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "monthly limit exceeded",
			candidate: candidate(shared.TransactionTypePayment, "20000", active("A", "900000"), nil),
			usage:     service.DebitUsage{Monthly: decimal.NewFromInt(990000)},
			wantErr:   shared.ErrValidation,
		},
		{
			name:      "cumulative limits ignore credits",
			candidate: candidate(shared.TransactionTypeDeposit, "20000", nil, active("B", "0")),
			usage:     service.DebitUsage{Daily: decimal.NewFromInt(99999)},
			wantLarge: true,
		},
		{
			name:      "large amount is advisory",
			candidate: candidate(shared.TransactionTypeTransfer, "10000", active("A", "20000"), active("B", "0")),
			wantLarge: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validator.Validate(tt.candidate, tt.usage)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "unexpected failure kind: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLarge, result.LargeAmount)
		})
	}
}

func TestTransactionValidator_UnsetLimitsAreSkipped(t *testing.T) {
	validator := NewTransactionValidator(config.LimitConfig{}, logger.Discard())

	result, err := validator.Validate(
		candidate(shared.TransactionTypeWithdrawal, "9999999", testAccount("A", "10000000", account.StatusActive), nil),
		service.DebitUsage{Daily: decimal.NewFromInt(1 << 40)},
	)
	require.NoError(t, err)
	assert.False(t, result.LargeAmount)
}

func TestTransactionValidator_SelfReferenceCheckedFirst(t *testing.T) {
	validator := NewTransactionValidator(testLimits(), logger.Discard())

	frozen := testAccount("A", "0", account.StatusFrozen)
	_, err := validator.Validate(candidate(shared.TransactionTypeTransfer, "10", frozen, frozen), service.DebitUsage{})

	f := shared.AsFailure(err)
	require.NotNil(t, f)
	assert.Equal(t, shared.FailureKindValidation, f.Kind)
	assert.Equal(t, shared.CodeValidationError, f.Code)
}
