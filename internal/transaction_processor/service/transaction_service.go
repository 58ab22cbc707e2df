package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Pagination bounds for ListTransactions
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TransactionServiceDeps groups the collaborators of the transaction orchestrator
type TransactionServiceDeps struct {
	Store     transaction.Store
	Index     transaction.TimeIndex
	Accounts  AccountService
	IDs       IDGenerator
	Validator TransactionValidator
	Processor PostProcessor
	Fetcher   *ParallelFetcher
	// TrackDebitUsage enables the day and month debit totals fed to the validator
	TrackDebitUsage bool
	// SettlementWait bounds how long CreateTransaction waits for settlement
	SettlementWait time.Duration
}

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	store           transaction.Store
	index           transaction.TimeIndex
	accounts        AccountService
	ids             IDGenerator
	validator       TransactionValidator
	processor       PostProcessor
	fetcher         *ParallelFetcher
	trackDebitUsage bool
	debitLocks      accountLocks
	settlementWait  time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewTransactionService creates a new transaction orchestrator
func NewTransactionService(logger *slog.Logger, deps TransactionServiceDeps) TransactionService {
	return &TransactionServiceImpl{
		store:           deps.Store,
		index:           deps.Index,
		accounts:        deps.Accounts,
		ids:             deps.IDs,
		validator:       deps.Validator,
		processor:       deps.Processor,
		fetcher:         deps.Fetcher,
		trackDebitUsage: deps.TrackDebitUsage,
		settlementWait:  deps.SettlementWait,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *TransactionServiceImpl) loggerFor(ctx context.Context) *slog.Logger {
	if correlationID := shared.CorrelationID(ctx); correlationID != "" {
		return s.logger.With("correlation_id", correlationID)
	}
	return s.logger
}

// CreateTransaction validates candidate, stores it as Pending and hands it to post-processing.
// The returned record reflects settlement when it finishes within the settlement wait.
func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, candidate *transaction.Transaction) (*transaction.Transaction, error) {
	logger := s.loggerFor(ctx)

	if candidate == nil {
		return nil, shared.NewValidationFailure("transaction is required")
	}
	txn := candidate.Clone()
	txn.FromAccount, txn.ToAccount = nil, nil
	if err := checkFields(txn); err != nil {
		logger.Info("Transaction rejected", "kind", err.Kind, "reason", err.Message)
		return nil, err
	}

	suppliedKey := strings.TrimSpace(txn.IdempotencyKey)
	if suppliedKey != "" {
		if !s.store.ClaimIdempotencyKey(ctx, suppliedKey) {
			logger.Warn("Duplicate transaction request", "idempotency_key", suppliedKey)
			return nil, shared.NewConflictFailure("duplicate transaction request: idempotency key already used")
		}
	}

	saved, largeAmount, err := s.createTransaction(ctx, logger, txn, suppliedKey)
	if err != nil {
		if suppliedKey != "" {
			s.store.ReleaseIdempotencyKey(ctx, suppliedKey)
		}
		failure := shared.AsFailure(err)
		if failure.Kind == shared.FailureKindSystem {
			logger.Error("Failed to create transaction", "error", err)
		} else {
			logger.Info("Transaction rejected", "kind", failure.Kind, "reason", failure.Message)
		}
		return nil, failure
	}

	logger.Info("Transaction created",
		"transaction_id", saved.ID,
		"type", saved.Type,
		"amount", saved.Amount.String(),
		"direction", saved.Direction,
	)

	done, err := s.processor.Submit(ctx, PostProcessingJob{
		Transaction: saved,
		Operation:   shared.OperationCreate,
		LargeAmount: largeAmount,
	})
	if err != nil {
		logger.Error("Post-processing not scheduled", "transaction_id", saved.ID, "error", err)
		return saved, nil
	}

	if !s.awaitSettlement(ctx, done) {
		logger.Warn("Settlement still running, returning pending transaction", "transaction_id", saved.ID)
		return saved, nil
	}

	latest, err := s.store.GetByID(ctx, saved.ID)
	if err != nil {
		logger.Error("Failed to re-read settled transaction", "transaction_id", saved.ID, "error", err)
		return saved, nil
	}
	return latest, nil
}

func (s *TransactionServiceImpl) createTransaction(ctx context.Context, logger *slog.Logger, txn *transaction.Transaction, suppliedKey string) (*transaction.Transaction, bool, error) {
	if err := s.resolveAccounts(ctx, txn); err != nil {
		return nil, false, err
	}

	// held until the record is stored so concurrent debits see each other's usage
	if s.tracksUsage(txn) {
		unlock := s.debitLocks.Lock(txn.FromAccountID)
		defer unlock()
	}

	usage, err := s.debitUsage(ctx, txn)
	if err != nil {
		return nil, false, err
	}

	result, err := s.validator.Validate(txn, usage)
	if err != nil {
		return nil, false, err
	}

	if err := configureByType(txn); err != nil {
		return nil, false, err
	}

	txn.ID = s.ids.TransactionID()
	txn.Timestamp = s.now()
	txn.Status = shared.TransactionStatusPending
	if strings.TrimSpace(txn.ReferenceNumber) == "" {
		txn.ReferenceNumber = s.ids.ReferenceNumber()
	}
	if suppliedKey != "" {
		txn.IdempotencyKey = suppliedKey
	} else {
		key, err := s.claimGeneratedKey(ctx, logger)
		if err != nil {
			return nil, false, err
		}
		txn.IdempotencyKey = key
	}

	saved, err := s.store.Save(ctx, txn)
	if err != nil {
		if suppliedKey == "" {
			s.store.ReleaseIdempotencyKey(ctx, txn.IdempotencyKey)
		}
		return nil, false, shared.NewSystemFailure(err)
	}
	s.index.RecordNew(saved.ID)

	return saved, result.LargeAmount, nil
}

// maxKeyAttempts bounds regeneration when a generated idempotency key collides
const maxKeyAttempts = 5

func (s *TransactionServiceImpl) claimGeneratedKey(ctx context.Context, logger *slog.Logger) (string, error) {
	for attempt := 1; attempt <= maxKeyAttempts; attempt++ {
		key := s.ids.IdempotencyKey()
		if s.store.ClaimIdempotencyKey(ctx, key) {
			return key, nil
		}
		logger.Warn("Generated idempotency key already held, regenerating", "idempotency_key", key, "attempt", attempt)
	}
	return "", shared.NewSystemFailure(errors.New("could not allocate a unique idempotency key"))
}

// checkFields enforces the field formats every front door must respect
func checkFields(txn *transaction.Transaction) *shared.Failure {
	if !txn.Currency.Valid() {
		return shared.NewValidationFailure("unsupported currency: %s", txn.Currency)
	}
	if utf8.RuneCountInString(txn.Remark) > transaction.MaxRemarkLength {
		return shared.NewValidationFailure("remark must not exceed %d characters", transaction.MaxRemarkLength)
	}
	return nil
}

func (s *TransactionServiceImpl) resolveAccounts(ctx context.Context, txn *transaction.Transaction) error {
	txn.FromAccountID = strings.TrimSpace(txn.FromAccountID)
	txn.ToAccountID = strings.TrimSpace(txn.ToAccountID)

	if txn.FromAccountID != "" {
		acc, err := s.accounts.GetAccount(ctx, txn.FromAccountID)
		if err != nil {
			return relabelAccountFailure(err, "source account not found: "+txn.FromAccountID)
		}
		txn.FromAccount = acc
	}
	if txn.ToAccountID != "" {
		acc, err := s.accounts.GetAccount(ctx, txn.ToAccountID)
		if err != nil {
			return relabelAccountFailure(err, "destination account not found: "+txn.ToAccountID)
		}
		txn.ToAccount = acc
	}
	return nil
}

func relabelAccountFailure(err error, message string) error {
	f := shared.AsFailure(err)
	if f.Kind != shared.FailureKindInvalidAccount {
		return f
	}
	return shared.NewInvalidAccountFailure(f.Err, "%s", message)
}

func (s *TransactionServiceImpl) tracksUsage(txn *transaction.Transaction) bool {
	return s.trackDebitUsage && txn.Type.IsDebit() && txn.FromAccountID != ""
}

// debitUsage sums the source account's debits booked since the start of the current day and month.
// Failed and cancelled transactions do not count.
func (s *TransactionServiceImpl) debitUsage(ctx context.Context, txn *transaction.Transaction) (DebitUsage, error) {
	usage := DebitUsage{Daily: decimal.Zero, Monthly: decimal.Zero}
	if !s.tracksUsage(txn) {
		return usage, nil
	}

	history, err := s.store.GetByAccountID(ctx, txn.FromAccountID)
	if err != nil {
		return usage, shared.NewSystemFailure(err)
	}

	now := s.now()
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())

	for _, h := range history {
		if h.Timestamp.Before(monthStart) {
			continue
		}
		if h.FromAccountID != txn.FromAccountID || !h.Type.IsDebit() {
			continue
		}
		if h.Status == shared.TransactionStatusFailed || h.Status == shared.TransactionStatusCancelled {
			continue
		}
		usage.Monthly = usage.Monthly.Add(h.Amount)
		if !h.Timestamp.Before(dayStart) {
			usage.Daily = usage.Daily.Add(h.Amount)
		}
	}
	return usage, nil
}

// configureByType drops the account reference a type does not use and derives the direction
func configureByType(txn *transaction.Transaction) error {
	switch txn.Type {
	case shared.TransactionTypeDeposit:
		txn.FromAccountID, txn.FromAccount = "", nil
		txn.Direction = shared.DirectionIn
	case shared.TransactionTypeWithdrawal:
		txn.ToAccountID, txn.ToAccount = "", nil
		txn.Direction = shared.DirectionOut
	case shared.TransactionTypeTransfer:
		if txn.FromAccount == nil || txn.ToAccount == nil {
			return shared.NewValidationFailure("transfer requires both a source and a destination account")
		}
		txn.Direction = shared.DirectionOut
	case shared.TransactionTypePayment:
		txn.Direction = shared.DirectionOut
	case shared.TransactionTypeRefund:
		txn.Direction = shared.DirectionIn
	default:
		return shared.NewValidationFailure("unsupported transaction type: %s", txn.Type)
	}
	return nil
}

func (s *TransactionServiceImpl) awaitSettlement(ctx context.Context, done <-chan struct{}) bool {
	if s.settlementWait <= 0 {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(s.settlementWait)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// UpdateTransaction changes the remark of a Pending or Failed transaction; every other field is kept.
func (s *TransactionServiceImpl) UpdateTransaction(ctx context.Context, id string, patch transaction.RemarkPatch) (*transaction.Transaction, error) {
	logger := s.loggerFor(ctx)

	if patch.Remark != nil && utf8.RuneCountInString(*patch.Remark) > transaction.MaxRemarkLength {
		return nil, shared.NewValidationFailure("remark must not exceed %d characters", transaction.MaxRemarkLength)
	}

	updated, err := s.store.Update(ctx, id, func(current *transaction.Transaction) error {
		if current.Status == shared.TransactionStatusCompleted {
			return shared.NewValidationFailure("completed transactions cannot be modified")
		}
		if !current.Editable() {
			return shared.NewValidationFailure("only pending or failed transactions can be modified")
		}
		if patch.Remark != nil {
			current.Remark = *patch.Remark
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, shared.NewNotFoundFailure(err, "transaction not found: %s", id)
		}
		failure := shared.AsFailure(err)
		if failure.Kind == shared.FailureKindSystem {
			logger.Error("Failed to update transaction", "transaction_id", id, "error", err)
		}
		return nil, failure
	}

	logger.Info("Transaction updated", "transaction_id", updated.ID)

	if _, err := s.processor.Submit(ctx, PostProcessingJob{Transaction: updated, Operation: shared.OperationUpdate}); err != nil {
		logger.Error("Post-processing not scheduled", "transaction_id", updated.ID, "error", err)
	}
	return updated, nil
}

// DeleteTransaction always fails: transaction records are retained.
func (s *TransactionServiceImpl) DeleteTransaction(ctx context.Context, id string) error {
	s.loggerFor(ctx).Warn("Rejected transaction delete", "transaction_id", id)
	return shared.NewValidationFailure("transaction records cannot be deleted, contact an administrator")
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	txn, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			return nil, shared.NewNotFoundFailure(err, "transaction not found: %s", id)
		}
		s.loggerFor(ctx).Error("Failed to get transaction", "transaction_id", id, "error", err)
		return nil, shared.NewSystemFailure(err)
	}
	return txn, nil
}

// ListTransactions returns one newest-first page. Ids that no longer resolve are dropped.
func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, page, size int) (*transaction.Page, error) {
	if page < 0 {
		return nil, shared.NewValidationFailure("page must not be negative")
	}
	if size < 1 || size > MaxPageSize {
		return nil, shared.NewValidationFailure("size must be between 1 and %d", MaxPageSize)
	}

	ids := s.index.Page(page, size)
	items := make([]*transaction.Transaction, 0, len(ids))
	if len(ids) > 0 {
		for _, txn := range s.fetcher.Fetch(ctx, ids, s.store.GetByID) {
			if txn != nil {
				items = append(items, txn)
			}
		}
	}

	return &transaction.Page{
		Items:    items,
		Page:     page,
		PageSize: size,
		Total:    s.index.Count(),
	}, nil
}
