package scheduler

import (
	"context"
	"sync"
	"time"
)

// WarningDeduper enforces the one-notification-per-ticket-per-window policy
// for deadline warnings. MarkDeadlineWarned reports true only the first time
// it is called for a ticket within the window; the mark expires with ttl so a
// ticket that is reclaimed and restarted can warn again in its new window.
// The redis-backed implementation lives in the persistence package.
type WarningDeduper interface {
	MarkDeadlineWarned(ctx context.Context, ticketID string, ttl time.Duration) (bool, error)
}

// MemoryDeduper is the in-process fallback used when redis is not configured.
// Sufficient for a single scheduling authority, which is all this service
// assumes.
type MemoryDeduper struct {
	mu     sync.Mutex
	warned map[string]time.Time
}

// NewMemoryDeduper builds an empty deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{warned: make(map[string]time.Time)}
}

// MarkDeadlineWarned records the warning, expiring stale marks lazily.
func (d *MemoryDeduper) MarkDeadlineWarned(ctx context.Context, ticketID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, expiry := range d.warned {
		if now.After(expiry) {
			delete(d.warned, id)
		}
	}
	if _, exists := d.warned[ticketID]; exists {
		return false, nil
	}
	d.warned[ticketID] = now.Add(ttl)
	return true, nil
}
