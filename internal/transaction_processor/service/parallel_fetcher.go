package service

import (
	"context"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/transaction"
	"golang.org/x/sync/errgroup"
)

// LookupFunc resolves a single transaction id
type LookupFunc func(ctx context.Context, id string) (*transaction.Transaction, error)

// ParallelFetcher resolves a page of ids concurrently with a bounded number of lookups in flight
type ParallelFetcher struct {
	concurrency int
	logger      *slog.Logger
}

func NewParallelFetcher(concurrency int, logger *slog.Logger) *ParallelFetcher {
	return &ParallelFetcher{
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// Fetch waits for every lookup and returns results aligned to ids.
// A failed lookup leaves a nil slot and does not cancel the others.
func (f *ParallelFetcher) Fetch(ctx context.Context, ids []string, lookup LookupFunc) []*transaction.Transaction {
	results := make([]*transaction.Transaction, len(ids))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			txn, err := lookup(ctx, id)
			if err != nil {
				f.logger.Warn("Lookup failed, dropping from page", "transaction_id", id, "error", err)
				return nil
			}
			results[i] = txn
			return nil
		})
	}
	_ = g.Wait()

	return results
}
