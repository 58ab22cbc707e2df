package shared

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failure returned by the transaction engine.
type FailureKind string

const (
	FailureKindValidation        FailureKind = "VALIDATION_ERROR"
	FailureKindInvalidAccount    FailureKind = "INVALID_ACCOUNT"
	FailureKindInsufficientFunds FailureKind = "INSUFFICIENT_BALANCE"
	FailureKindConflict          FailureKind = "TRANSACTION_CONFLICT"
	FailureKindNotFound          FailureKind = "TRANSACTION_NOT_FOUND"
	FailureKindSystem            FailureKind = "SYSTEM_ERROR"
)

// Numeric codes reported to API clients.
const (
	CodeSystemError         = 1000
	CodeTransactionNotFound = 2001
	CodeInsufficientBalance = 2002
	CodeTransactionConflict = 2003
	CodeValidationError     = 3000
	CodeInvalidAccount      = 3002
)

var kindCodes = map[FailureKind]int{
	FailureKindValidation:        CodeValidationError,
	FailureKindInvalidAccount:    CodeInvalidAccount,
	FailureKindInsufficientFunds: CodeInsufficientBalance,
	FailureKindConflict:          CodeTransactionConflict,
	FailureKindNotFound:          CodeTransactionNotFound,
	FailureKindSystem:            CodeSystemError,
}

// Failure is the error type every engine operation returns.
// Message is safe to show to callers; Err keeps the underlying cause for logs.
type Failure struct {
	Kind    FailureKind
	Code    int
	Message string
	Err     error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation        = &Failure{Kind: FailureKindValidation}
	ErrInvalidAccount    = &Failure{Kind: FailureKindInvalidAccount}
	ErrInsufficientFunds = &Failure{Kind: FailureKindInsufficientFunds}
	ErrConflict          = &Failure{Kind: FailureKindConflict}
	ErrNotFound          = &Failure{Kind: FailureKindNotFound}
	ErrSystem            = &Failure{Kind: FailureKindSystem}
)

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches any Failure of the same kind.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind
}

func newFailure(kind FailureKind, err error, format string, args ...any) *Failure {
	return &Failure{
		Kind:    kind,
		Code:    kindCodes[kind],
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func NewValidationFailure(format string, args ...any) *Failure {
	return newFailure(FailureKindValidation, nil, format, args...)
}

func NewInvalidAccountFailure(err error, format string, args ...any) *Failure {
	return newFailure(FailureKindInvalidAccount, err, format, args...)
}

func NewInsufficientFundsFailure(err error, format string, args ...any) *Failure {
	return newFailure(FailureKindInsufficientFunds, err, format, args...)
}

func NewConflictFailure(format string, args ...any) *Failure {
	return newFailure(FailureKindConflict, nil, format, args...)
}

func NewNotFoundFailure(err error, format string, args ...any) *Failure {
	return newFailure(FailureKindNotFound, err, format, args...)
}

// NewSystemFailure hides the cause behind a generic message.
func NewSystemFailure(err error) *Failure {
	return newFailure(FailureKindSystem, err, "internal system error")
}

// AsFailure returns err as a *Failure, wrapping anything unknown as a system failure.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return NewSystemFailure(err)
}
