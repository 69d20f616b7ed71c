package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores notes and categories in process memory. Cross-entity
// checks (category in use, category still present) run under one lock.
type MemoryRepo struct {
	mu         sync.RWMutex
	nextID     int64
	nextCatID  int64
	items      map[int64]Note
	categories map[int64]Category
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: map[int64]Note{}, categories: map[int64]Category{}}
}

func (r *MemoryRepo) Insert(ctx context.Context, n Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkCategory(n.OwnerID, n.CategoryID); err != nil {
		return Note{}, err
	}
	r.nextID++
	n.ID = r.nextID
	r.items[n.ID] = n
	return n, nil
}

func (r *MemoryRepo) Get(ctx context.Context, ownerID, id int64) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.items[id]
	if !ok || n.OwnerID != ownerID {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID int64) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Note, 0)
	for _, n := range r.items {
		if n.OwnerID == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[n.ID]
	if !ok || cur.OwnerID != n.OwnerID {
		return ErrNotFound
	}
	if err := r.checkCategory(n.OwnerID, n.CategoryID); err != nil {
		return err
	}
	r.items[n.ID] = n
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// MoveNotes applies every move or none. A note of another owner fails the
// whole batch with ErrNotFound.
func (r *MemoryRepo) MoveNotes(ctx context.Context, ownerID int64, moves []LayoutMove, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range moves {
		n, ok := r.items[m.NoteID]
		if !ok || n.OwnerID != ownerID {
			return fmt.Errorf("%w: note %d", ErrNotFound, m.NoteID)
		}
	}
	for _, m := range moves {
		n := r.items[m.NoteID]
		n.Position = m.Position
		if m.Layout != nil {
			n.Layout = *m.Layout
		}
		n.UpdatedAt = at
		r.items[n.ID] = n
	}
	return nil
}

func (r *MemoryRepo) InsertCategory(ctx context.Context, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(c.OwnerID, 0, c.Name) {
		return Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, c.Name)
	}
	r.nextCatID++
	c.ID = r.nextCatID
	r.categories[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) GetCategory(ctx context.Context, ownerID, id int64) (Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok || c.OwnerID != ownerID {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0)
	for _, c := range r.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateCategory(ctx context.Context, c Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.categories[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return ErrNotFound
	}
	if r.nameTaken(c.OwnerID, c.ID, c.Name) {
		return fmt.Errorf("%w: category %q already exists", ErrConflict, c.Name)
	}
	r.categories[c.ID] = c
	return nil
}

// DeleteCategory refuses while any note still belongs to the category.
func (r *MemoryRepo) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok || c.OwnerID != ownerID {
		return ErrNotFound
	}
	for _, n := range r.items {
		if n.CategoryID == id {
			return fmt.Errorf("%w: category still has notes", ErrConflict)
		}
	}
	delete(r.categories, id)
	return nil
}

func (r *MemoryRepo) checkCategory(ownerID, categoryID int64) error {
	if categoryID == 0 {
		return nil
	}
	c, ok := r.categories[categoryID]
	if !ok || c.OwnerID != ownerID {
		return fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	return nil
}

func (r *MemoryRepo) nameTaken(ownerID, exceptID int64, name string) bool {
	for _, c := range r.categories {
		if c.OwnerID == ownerID && c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
