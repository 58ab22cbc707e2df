package components

import (
	"log/slog"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

// TransactionValidatorImpl runs the business checks that follow account resolution.
// Checks run in a fixed order and the first failure wins.
type TransactionValidatorImpl struct {
	limits config.LimitConfig
	logger *slog.Logger
}

func NewTransactionValidator(limits config.LimitConfig, logger *slog.Logger) service.TransactionValidator {
	return &TransactionValidatorImpl{
		limits: limits,
		logger: logger,
	}
}

// Validate checks a candidate whose account snapshots are already resolved
func (v *TransactionValidatorImpl) Validate(candidate *transaction.Transaction, usage service.DebitUsage) (service.ValidationResult, error) {
	var result service.ValidationResult

	if candidate.FromAccountID != "" && candidate.FromAccountID == candidate.ToAccountID {
		return result, shared.NewValidationFailure("source and destination account must differ")
	}
	if err := v.checkShape(candidate); err != nil {
		return result, err
	}
	if err := v.checkAccountStatus(candidate); err != nil {
		return result, err
	}
	if err := v.checkBalance(candidate); err != nil {
		return result, err
	}
	if err := v.checkLimits(candidate, usage, &result); err != nil {
		return result, err
	}

	return result, nil
}

func (v *TransactionValidatorImpl) checkShape(candidate *transaction.Transaction) error {
	switch candidate.Type {
	case shared.TransactionTypeTransfer:
		if candidate.FromAccount == nil || candidate.ToAccount == nil {
			return shared.NewValidationFailure("transfer requires both a source and a destination account")
		}
	case shared.TransactionTypeDeposit:
		if candidate.ToAccount == nil {
			return shared.NewValidationFailure("deposit requires a destination account")
		}
	case shared.TransactionTypeWithdrawal:
		if candidate.FromAccount == nil {
			return shared.NewValidationFailure("withdrawal requires a source account")
		}
	case shared.TransactionTypePayment, shared.TransactionTypeRefund:
	default:
		return shared.NewValidationFailure("unsupported transaction type: %s", candidate.Type)
	}
	return nil
}

func (v *TransactionValidatorImpl) checkAccountStatus(candidate *transaction.Transaction) error {
	if from := candidate.FromAccount; from != nil && !from.IsActive() {
		return shared.NewInvalidAccountFailure(nil, "source account %s is %s", from.AccountID, from.Status)
	}
	if to := candidate.ToAccount; to != nil && to.IsClosed() {
		return shared.NewInvalidAccountFailure(nil, "destination account %s is closed and cannot receive funds", to.AccountID)
	}
	return nil
}

func (v *TransactionValidatorImpl) checkBalance(candidate *transaction.Transaction) error {
	from := candidate.FromAccount
	if !candidate.Type.IsDebit() || from == nil {
		return nil
	}
	if !from.CanDebit(candidate.Amount) {
		return shared.NewInsufficientFundsFailure(nil,
			"insufficient balance in account %s: balance %s, amount %s",
			from.AccountID, from.Balance.String(), candidate.Amount.String())
	}
	return nil
}

func (v *TransactionValidatorImpl) checkLimits(candidate *transaction.Transaction, usage service.DebitUsage, result *service.ValidationResult) error {
	amount := candidate.Amount
	limits := v.limits

	if !amount.IsPositive() {
		return shared.NewValidationFailure("amount must be positive")
	}
	if limits.MinimumTransactionAmount != nil && amount.LessThan(*limits.MinimumTransactionAmount) {
		return shared.NewValidationFailure("amount must not be less than %s", limits.MinimumTransactionAmount.String())
	}
	if limits.SingleTransactionLimit != nil && amount.GreaterThan(*limits.SingleTransactionLimit) {
		return shared.NewValidationFailure("amount must not exceed the single transaction limit of %s", limits.SingleTransactionLimit.String())
	}

	if candidate.Type.IsDebit() && candidate.FromAccountID != "" {
		if limits.DailyTransactionLimit != nil && usage.Daily.Add(amount).GreaterThan(*limits.DailyTransactionLimit) {
			return shared.NewValidationFailure("daily transaction limit of %s exceeded for account %s",
				limits.DailyTransactionLimit.String(), candidate.FromAccountID)
		}
		if limits.MonthlyTransactionLimit != nil && usage.Monthly.Add(amount).GreaterThan(*limits.MonthlyTransactionLimit) {
			return shared.NewValidationFailure("monthly transaction limit of %s exceeded for account %s",
				limits.MonthlyTransactionLimit.String(), candidate.FromAccountID)
		}
	}

	if limits.LargeAmountThreshold != nil && amount.GreaterThanOrEqual(*limits.LargeAmountThreshold) {
		result.LargeAmount = true
		v.logger.Warn("Large amount transaction",
			"amount", amount.String(),
			"threshold", limits.LargeAmountThreshold.String(),
			"from_account_id", candidate.FromAccountID,
			"to_account_id", candidate.ToAccountID,
		)
	}

	return nil
}
