package shared

// TransactionType defines possible transaction operations
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeRefund     TransactionType = "REFUND"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypePayment, TransactionTypeRefund:
		return true
	}
	return false
}

// IsDebit reports whether the type takes money out of the source account.
func (t TransactionType) IsDebit() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypePayment:
		return true
	}
	return false
}

// TransactionStatus defines transaction processing states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	// TransactionStatusCancelled is accepted on read but no flow currently produces it.
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Direction is derived from the transaction type, never supplied by callers.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Operation tags a post-processing run.
type Operation string

const (
	OperationCreate Operation = "CREATE"
	OperationUpdate Operation = "UPDATE"
)

// Currency is an ISO 4217 code accepted by the engine.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
	CurrencyGBP Currency = "GBP"
	CurrencyHKD Currency = "HKD"
	CurrencyTWD Currency = "TWD"
	CurrencyKRW Currency = "KRW"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyCNY, CurrencyUSD, CurrencyEUR, CurrencyJPY,
		CurrencyGBP, CurrencyHKD, CurrencyTWD, CurrencyKRW:
		return true
	}
	return false
}
