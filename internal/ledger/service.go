package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

type Repository interface {
	InsertSheet(ctx context.Context, s Sheet) (Sheet, error)
	GetSheet(ctx context.Context, ownerID, id int64) (Sheet, error)
	ListSheets(ctx context.Context, ownerID int64) ([]Sheet, error)
	UpdateSheet(ctx context.Context, s Sheet) error
	DeleteSheet(ctx context.Context, ownerID, id int64) error
	Cells(ctx context.Context, ownerID, sheetID int64) ([]Cell, error)
	PutCells(ctx context.Context, ownerID, sheetID int64, cells []Cell, at time.Time) error
}

const (
	maxTitleLen  = 100
	maxBatchSize = 5000
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// ListSheets returns the owner's sheets, most recently updated first.
func (s *Service) ListSheets(ctx context.Context, ownerID int64) ([]Sheet, error) {
	out, err := s.repo.ListSheets(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Service) GetSheet(ctx context.Context, ownerID, id int64) (SheetWithCells, error) {
	sh, err := s.repo.GetSheet(ctx, ownerID, id)
	if err != nil {
		return SheetWithCells{}, err
	}
	cells, err := s.repo.Cells(ctx, ownerID, id)
	if err != nil {
		return SheetWithCells{}, err
	}
	return SheetWithCells{Sheet: sh, Cells: cells}, nil
}

func (s *Service) CreateSheet(ctx context.Context, ownerID int64, d SheetDraft) (Sheet, error) {
	d, err := normalizeSheet(d)
	if err != nil {
		return Sheet{}, err
	}
	now := s.clock().UTC()
	return s.repo.InsertSheet(ctx, Sheet{
		OwnerID:     ownerID,
		Title:       d.Title,
		Description: d.Description,
		Orientation: d.Orientation,
		RowCount:    d.RowCount,
		ColumnCount: d.ColumnCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// UpdateSheet edits sheet metadata. Shrinking the grid discards cells that
// no longer fit.
func (s *Service) UpdateSheet(ctx context.Context, ownerID, id int64, d SheetDraft) (Sheet, error) {
	d, err := normalizeSheet(d)
	if err != nil {
		return Sheet{}, err
	}
	sh, err := s.repo.GetSheet(ctx, ownerID, id)
	if err != nil {
		return Sheet{}, err
	}
	sh.Title = d.Title
	sh.Description = d.Description
	sh.Orientation = d.Orientation
	sh.RowCount = d.RowCount
	sh.ColumnCount = d.ColumnCount
	sh.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateSheet(ctx, sh); err != nil {
		return Sheet{}, err
	}
	return sh, nil
}

func (s *Service) DeleteSheet(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteSheet(ctx, ownerID, id)
}

// PutCells writes a batch of cells. The batch is rejected as a whole if any
// cell is out of bounds or addressed twice.
func (s *Service) PutCells(ctx context.Context, ownerID, sheetID int64, cells []Cell) (SheetWithCells, error) {
	if len(cells) == 0 || len(cells) > maxBatchSize {
		return SheetWithCells{}, fmt.Errorf("%w: batch must hold 1..%d cells", ErrInvalidArgument, maxBatchSize)
	}
	sh, err := s.repo.GetSheet(ctx, ownerID, sheetID)
	if err != nil {
		return SheetWithCells{}, err
	}

	seen := make(map[cellKey]struct{}, len(cells))
	for _, c := range cells {
		if c.Row < 0 || c.Row >= sh.RowCount || c.Col < 0 || c.Col >= sh.ColumnCount {
			return SheetWithCells{}, fmt.Errorf("%w: cell %s outside %dx%d grid", ErrInvalidArgument, CellRef(c.Row, c.Col), sh.RowCount, sh.ColumnCount)
		}
		k := cellKey{c.Row, c.Col}
		if _, dup := seen[k]; dup {
			return SheetWithCells{}, fmt.Errorf("%w: cell %s repeated", ErrInvalidArgument, CellRef(c.Row, c.Col))
		}
		seen[k] = struct{}{}
	}

	if err := s.repo.PutCells(ctx, ownerID, sheetID, cells, s.clock().UTC()); err != nil {
		return SheetWithCells{}, err
	}
	return s.GetSheet(ctx, ownerID, sheetID)
}

// CellRef renders zero-based coordinates in A1 notation.
func CellRef(row, col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return fmt.Sprintf("%s%d", b, row+1)
}

func normalizeSheet(d SheetDraft) (SheetDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" || utf8.RuneCountInString(d.Title) > maxTitleLen {
		return SheetDraft{}, fmt.Errorf("%w: title must be 1..%d characters", ErrInvalidArgument, maxTitleLen)
	}
	switch d.Orientation {
	case "":
		d.Orientation = Landscape
	case Landscape, Portrait:
	default:
		return SheetDraft{}, fmt.Errorf("%w: orientation %q", ErrInvalidArgument, d.Orientation)
	}
	if d.RowCount == 0 {
		d.RowCount = DefaultRows
	}
	if d.ColumnCount == 0 {
		d.ColumnCount = DefaultColumns
	}
	if d.RowCount < 1 || d.RowCount > MaxRows || d.ColumnCount < 1 || d.ColumnCount > MaxColumns {
		return SheetDraft{}, fmt.Errorf("%w: grid must be 1..%d rows by 1..%d columns", ErrInvalidArgument, MaxRows, MaxColumns)
	}
	return d, nil
}
