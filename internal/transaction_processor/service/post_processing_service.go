package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bank-transaction-engine/internal/domain/event"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// PostProcessingService runs the post-processing pipeline on a bounded worker pool.
// Stages run in order: settlement, audit, risk check, notification. A failing or
// panicking stage is logged and never stops the stages after it.
type PostProcessingService struct {
	settler  Settler
	auditor  AuditRecorder
	risk     RiskCheckTrigger
	notifier Notifier
	pool     *ants.Pool
	logger   *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewPostProcessingService(
	settler Settler,
	auditor AuditRecorder,
	risk RiskCheckTrigger,
	notifier Notifier,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*PostProcessingService, error) {
	if config.Size <= 0 {
		return nil, fmt.Errorf("worker pool size must be greater than 0, got %d", config.Size)
	}

	// Submit blocks while every worker is busy, which bounds outstanding work.
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &PostProcessingService{
		settler:  settler,
		auditor:  auditor,
		risk:     risk,
		notifier: notifier,
		pool:     pool,
		logger:   logger,
	}, nil
}

// Submit schedules job and returns a channel that is closed once settlement has finished.
// The pipeline keeps running if ctx is cancelled; applied balance changes are never rolled back.
func (s *PostProcessingService) Submit(ctx context.Context, job PostProcessingJob) (<-chan struct{}, error) {
	logger := s.logger
	if correlationID := shared.CorrelationID(ctx); correlationID != "" {
		logger = s.logger.With("correlation_id", correlationID)
	}

	if job.Transaction == nil {
		return nil, fmt.Errorf("post-processing job has no transaction")
	}

	settled := make(chan struct{})
	runCtx := context.WithoutCancel(ctx)

	// Copy the transaction to avoid data races with the caller
	jobCopy := job
	jobCopy.Transaction = job.Transaction.Clone()

	err := s.pool.Submit(func() {
		s.run(runCtx, logger, jobCopy, settled)
	})
	if err != nil {
		logger.Error("Failed to submit post-processing job",
			"transaction_id", job.Transaction.ID,
			"operation", job.Operation,
			"error", err,
		)
		return nil, err
	}

	logger.Debug("Submitted post-processing job", "transaction_id", job.Transaction.ID, "operation", job.Operation)
	return settled, nil
}

func (s *PostProcessingService) run(ctx context.Context, logger *slog.Logger, job PostProcessingJob, settled chan struct{}) {
	txn := job.Transaction
	logger = logger.With("transaction_id", txn.ID, "operation", job.Operation)

	var alerts []event.LowBalanceAlert
	s.runStage(logger, "settlement", func() error {
		if job.Operation != shared.OperationCreate {
			return nil
		}
		result, lowBalance, err := s.settler.Settle(ctx, txn)
		if err != nil {
			return err
		}
		txn, alerts = result, lowBalance
		return nil
	})
	close(settled)

	s.runStage(logger, "audit", func() error {
		return s.auditor.Record(ctx, txn, job.Operation)
	})
	s.runStage(logger, "risk_check", func() error {
		return s.risk.Trigger(ctx, txn, job.Operation, job.LargeAmount)
	})
	s.runStage(logger, "notification", func() error {
		return s.notifier.Notify(ctx, txn, job.Operation, alerts)
	})
}

func (s *PostProcessingService) runStage(logger *slog.Logger, stage string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Post-processing stage panicked", "stage", stage, "panic", r)
		}
	}()

	if err := fn(); err != nil {
		logger.Error("Post-processing stage failed", "stage", stage, "error", err)
	}
}

// Shutdown waits up to timeout for queued jobs, then releases the worker pool.
func (s *PostProcessingService) Shutdown(timeout time.Duration) {
	s.logger.Info("Shutting down post-processing pool", "running_workers", s.pool.Running(), "waiting", s.pool.Waiting())
	if err := s.pool.ReleaseTimeout(timeout); err != nil {
		s.logger.Warn("Post-processing pool did not drain before timeout", "error", err)
	}
}

// Running returns the number of running workers in the pool.
func (s *PostProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *PostProcessingService) Capacity() int {
	return s.pool.Cap()
}
