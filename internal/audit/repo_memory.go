package audit

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepo keeps auth events in process. Like the audit_events table it
// refuses a second event with the same id.
type MemoryRepo struct {
	mu     sync.RWMutex
	events []Event
	seen   map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{seen: make(map[string]struct{})}
}

func (r *MemoryRepo) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[e.ID]; dup {
		return fmt.Errorf("audit.MemoryRepo.Append: duplicate event id %q", e.ID)
	}
	r.seen[e.ID] = struct{}{}
	r.events = append(r.events, e)
	return nil
}

// Recent returns up to limit events, newest first. limit <= 0 means all.
func (r *MemoryRepo) Recent(_ context.Context, limit int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Event, 0, n)
	for i := len(r.events) - 1; len(out) < n; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}

// Events returns a copy in append order.
func (r *MemoryRepo) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Event(nil), r.events...)
}
