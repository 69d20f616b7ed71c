package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type sheetEntry struct {
	sheet Sheet
	cells map[cellKey]Cell
}

// MemoryRepo stores sheets and their cells in process memory.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	sheets map[int64]*sheetEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sheets: map[int64]*sheetEntry{}}
}

func (r *MemoryRepo) InsertSheet(ctx context.Context, s Sheet) (Sheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.sheets[s.ID] = &sheetEntry{sheet: s, cells: map[cellKey]Cell{}}
	return s, nil
}

func (r *MemoryRepo) owned(ownerID, id int64) (*sheetEntry, error) {
	e, ok := r.sheets[id]
	if !ok || e.sheet.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) GetSheet(ctx context.Context, ownerID, id int64) (Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, err := r.owned(ownerID, id)
	if err != nil {
		return Sheet{}, err
	}
	return e.sheet, nil
}

func (r *MemoryRepo) ListSheets(ctx context.Context, ownerID int64) ([]Sheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Sheet, 0)
	for _, e := range r.sheets {
		if e.sheet.OwnerID == ownerID {
			out = append(out, e.sheet)
		}
	}
	return out, nil
}

// UpdateSheet stores s and drops cells that fall outside its new bounds.
func (r *MemoryRepo) UpdateSheet(ctx context.Context, s Sheet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.owned(s.OwnerID, s.ID)
	if err != nil {
		return err
	}
	e.sheet = s
	for k := range e.cells {
		if k.row >= s.RowCount || k.col >= s.ColumnCount {
			delete(e.cells, k)
		}
	}
	return nil
}

func (r *MemoryRepo) DeleteSheet(ctx context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.owned(ownerID, id); err != nil {
		return err
	}
	delete(r.sheets, id)
	return nil
}

func (r *MemoryRepo) Cells(ctx context.Context, ownerID, sheetID int64) ([]Cell, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, err := r.owned(ownerID, sheetID)
	if err != nil {
		return nil, err
	}
	out := make([]Cell, 0, len(e.cells))
	for _, c := range e.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

// PutCells applies a batch atomically and stamps the sheet's UpdatedAt.
// Empty cells are deleted. Bounds are checked against the sheet as stored now,
// so a concurrent shrink cannot leave cells outside the grid.
func (r *MemoryRepo) PutCells(ctx context.Context, ownerID, sheetID int64, cells []Cell, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.owned(ownerID, sheetID)
	if err != nil {
		return err
	}
	for _, c := range cells {
		if c.Row >= e.sheet.RowCount || c.Col >= e.sheet.ColumnCount {
			return fmt.Errorf("%w: cell %s outside %dx%d grid", ErrInvalidArgument, CellRef(c.Row, c.Col), e.sheet.RowCount, e.sheet.ColumnCount)
		}
	}
	e.sheet.UpdatedAt = at
	for _, c := range cells {
		k := cellKey{c.Row, c.Col}
		if c.empty() {
			delete(e.cells, k)
			continue
		}
		e.cells[k] = c
	}
	return nil
}
