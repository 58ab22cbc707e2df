package components

import (
	"fmt"
	"log/slog"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

// Engine is the wired transaction core handed to the transport layer
type Engine struct {
	Transactions   service.TransactionService
	Accounts       service.AccountService
	PostProcessing *service.PostProcessingService
}

// CreateTransactionEngine creates the transaction orchestrator with all its dependencies.
func CreateTransactionEngine(
	ledger account.Ledger,
	store transaction.Store,
	index transaction.TimeIndex,
	auditSink service.AuditWriter,
	publisher service.EventPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) (*Engine, error) {
	accounts := service.NewAccountService(logger.With("component", "account_service"), ledger, store)

	settler := NewSettler(accounts, store, cfg.Limits, logger.With("component", "settler"))
	auditor := NewAuditRecorder(auditSink, logger.With("component", "audit_recorder"))
	risk := NewRiskCheckTrigger(publisher, cfg.Limits, logger.With("component", "risk_check"))
	notifier := NewNotifier(publisher, cfg.Limits, logger.With("component", "notifier"))

	postProcessing, err := service.NewPostProcessingService(
		settler,
		auditor,
		risk,
		notifier,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post-processing pool: %w", err)
	}

	transactions := service.NewTransactionService(logger.With("component", "transaction_service"), service.TransactionServiceDeps{
		Store:           store,
		Index:           index,
		Accounts:        accounts,
		IDs:             NewIDGenerator(),
		Validator:       NewTransactionValidator(cfg.Limits, logger.With("component", "validator")),
		Processor:       postProcessing,
		Fetcher:         service.NewParallelFetcher(cfg.WorkerPool.FetcherConcurrency, logger.With("component", "parallel_fetcher")),
		TrackDebitUsage: cfg.Limits.DailyTransactionLimit != nil || cfg.Limits.MonthlyTransactionLimit != nil,
		SettlementWait:  cfg.SettlementWait(),
	})

	logger.Info("Created transaction engine",
		"pool_size", cfg.WorkerPool.Size,
		"fetcher_concurrency", cfg.WorkerPool.FetcherConcurrency,
		"settlement_wait", cfg.SettlementWait(),
	)

	return &Engine{
		Transactions:   transactions,
		Accounts:       accounts,
		PostProcessing: postProcessing,
	}, nil
}
