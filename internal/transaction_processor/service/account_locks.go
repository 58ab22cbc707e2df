package service

import "sync"

// accountLocks hands out one mutex per account id. Entries are never removed;
// the set of accounts is bounded by the seeded ledger.
type accountLocks struct {
	locks sync.Map
}

// Lock blocks until the account's mutex is held and returns its release func
func (l *accountLocks) Lock(accountID string) func() {
	v, _ := l.locks.LoadOrStore(accountID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
