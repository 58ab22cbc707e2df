package memory

import (
	"context"
	"errors"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/bank-transaction-engine/internal/domain/transaction"
)

type storeShard struct {
	mu    sync.RWMutex
	items map[string]*transaction.Transaction
}

// TransactionStore is a sharded in-memory transaction.Store.
// Records are copied on the way in and out so callers never alias stored state.
type TransactionStore struct {
	shards          []*storeShard
	idempotencyKeys sync.Map
}

// NewTransactionStore creates a store with shardCount shards (at least one)
func NewTransactionStore(shardCount int) *TransactionStore {
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]*storeShard, shardCount)
	for i := range shards {
		shards[i] = &storeShard{items: make(map[string]*transaction.Transaction)}
	}
	return &TransactionStore{shards: shards}
}

func (s *TransactionStore) shardFor(id string) *storeShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Save inserts or fully replaces the record keyed by txn.ID
func (s *TransactionStore) Save(_ context.Context, txn *transaction.Transaction) (*transaction.Transaction, error) {
	if txn == nil || txn.ID == "" {
		return nil, errors.New("transaction id is required")
	}

	shard := s.shardFor(txn.ID)
	stored := txn.Clone()

	shard.mu.Lock()
	shard.items[stored.ID] = stored
	shard.mu.Unlock()

	return stored.Clone(), nil
}

func (s *TransactionStore) GetByID(_ context.Context, id string) (*transaction.Transaction, error) {
	shard := s.shardFor(id)

	shard.mu.RLock()
	stored, ok := shard.items[id]
	shard.mu.RUnlock()

	if !ok {
		return nil, transaction.ErrTransactionNotFound{ID: id}
	}
	return stored.Clone(), nil
}

func (s *TransactionStore) Update(_ context.Context, id string, mutate func(txn *transaction.Transaction) error) (*transaction.Transaction, error) {
	shard := s.shardFor(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	stored, ok := shard.items[id]
	if !ok {
		return nil, transaction.ErrTransactionNotFound{ID: id}
	}

	next := stored.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	shard.items[id] = next

	return next.Clone(), nil
}

// GetByAccountID performs a full scan over every shard
func (s *TransactionStore) GetByAccountID(_ context.Context, accountID string) ([]*transaction.Transaction, error) {
	var result []*transaction.Transaction
	for _, shard := range s.shards {
		shard.mu.RLock()
		for _, stored := range shard.items {
			if stored.Involves(accountID) {
				result = append(result, stored.Clone())
			}
		}
		shard.mu.RUnlock()
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].ID > result[j].ID
		}
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

func (s *TransactionStore) ClaimIdempotencyKey(_ context.Context, key string) bool {
	_, loaded := s.idempotencyKeys.LoadOrStore(key, struct{}{})
	return !loaded
}

func (s *TransactionStore) ReleaseIdempotencyKey(_ context.Context, key string) {
	s.idempotencyKeys.Delete(key)
}
