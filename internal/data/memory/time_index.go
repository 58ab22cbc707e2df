package memory

import (
	"sync"
)

// TimeIndex is an append-only transaction.TimeIndex.
// Ids are stored oldest first so that recording is an O(1) append; pages are
// read from the tail to produce newest-first order.
type TimeIndex struct {
	mu      sync.RWMutex
	ids     []string
	members map[string]struct{}
}

func NewTimeIndex() *TimeIndex {
	return &TimeIndex{members: make(map[string]struct{})}
}

// RecordNew places id at the head of the listing. Repeated ids are ignored.
func (ix *TimeIndex) RecordNew(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.members[id]; ok {
		return
	}
	ix.members[id] = struct{}{}
	ix.ids = append(ix.ids, id)
}

func (ix *TimeIndex) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.members[id]; !ok {
		return
	}
	delete(ix.members, id)
	for i := len(ix.ids) - 1; i >= 0; i-- {
		if ix.ids[i] == id {
			ix.ids = append(ix.ids[:i], ix.ids[i+1:]...)
			break
		}
	}
}

// Page returns ids at offset pageNumber*pageSize, newest first.
// An offset at or past the end yields an empty slice.
func (ix *TimeIndex) Page(pageNumber, pageSize int) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	total := len(ix.ids)
	// compare before multiplying so a huge page number cannot wrap the offset
	if pageSize <= 0 || pageNumber < 0 || total == 0 || pageNumber > (total-1)/pageSize {
		return []string{}
	}
	offset := pageNumber * pageSize

	n := min(pageSize, total-offset)
	page := make([]string, 0, n)
	for i := total - 1 - offset; i >= 0 && len(page) < n; i-- {
		page = append(page, ix.ids[i])
	}
	return page
}

func (ix *TimeIndex) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}
