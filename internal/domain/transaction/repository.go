package transaction

import (
	"context"
)

// Store owns transaction records keyed by id. Saved and returned records are copies.
type Store interface {
	Save(ctx context.Context, txn *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	// Update applies mutate to a copy of the stored record and saves it, atomically with
	// respect to other writers of the same id. Nothing is stored when mutate returns an error.
	Update(ctx context.Context, id string, mutate func(txn *Transaction) error) (*Transaction, error)
	// GetByAccountID scans every record whose source or destination is accountID, newest first
	GetByAccountID(ctx context.Context, accountID string) ([]*Transaction, error)
	// ClaimIdempotencyKey returns false if the key is already held
	ClaimIdempotencyKey(ctx context.Context, key string) bool
	ReleaseIdempotencyKey(ctx context.Context, key string)
}

// TimeIndex keeps transaction ids newest first for pagination.
// pageNumber and pageSize are validated by the caller.
type TimeIndex interface {
	RecordNew(id string)
	Remove(id string)
	Page(pageNumber, pageSize int) []string
	Count() int
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	ID string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	// If the target ID is empty, consider it a match for any ErrTransactionNotFound
	if t.ID == "" {
		return true
	}
	return e.ID == t.ID
}
