package planner

import (
	"context"
	"sync"
)

// MemoryRepo stores events in process memory, indexed by share code.
type MemoryRepo struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]Event
	byShare map[string]int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: map[int64]Event{}, byShare: map[string]int64{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e.ID = r.nextID
	r.items[e.ID] = e
	return e, nil
}

// GetVisible returns the event when userID owns it or participates in it.
func (r *MemoryRepo) GetVisible(ctx context.Context, userID, id int64) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok || !e.visibleTo(userID) {
		return Event{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) GetByShareCode(ctx context.Context, code string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byShare[code]
	if !ok {
		return Event{}, ErrNotFound
	}
	return r.items[id], nil
}

func (r *MemoryRepo) ListVisible(ctx context.Context, userID int64) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0)
	for _, e := range r.items {
		if e.visibleTo(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return ErrNotFound
	}
	if cur.ShareCode != "" && cur.ShareCode != e.ShareCode {
		delete(r.byShare, cur.ShareCode)
	}
	if e.ShareCode != "" {
		r.byShare[e.ShareCode] = e.ID
	}
	r.items[e.ID] = e
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok || e.OwnerID != ownerID {
		return ErrNotFound
	}
	if e.ShareCode != "" {
		delete(r.byShare, e.ShareCode)
	}
	delete(r.items, id)
	return nil
}
