package ledger

import (
	"errors"
	"time"
)

type Orientation string

const (
	Landscape Orientation = "LANDSCAPE"
	Portrait  Orientation = "PORTRAIT"
)

const (
	DefaultRows    = 40
	DefaultColumns = 26
	MaxRows        = 10000
	MaxColumns     = 702 // A..ZZ
)

// Sheet is a grid of cells owned by one user.
type Sheet struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"-"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Orientation Orientation `json:"orientation"`
	RowCount    int         `json:"rowCount"`
	ColumnCount int         `json:"columnCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cell is addressed by zero-based (Row, Col). Empty cells are not stored.
type Cell struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	ValueRaw  string `json:"valueRaw"`
	ValueType string `json:"valueType,omitempty"`
	Formula   string `json:"formula,omitempty"`
	Note      string `json:"note,omitempty"`
}

func (c Cell) empty() bool {
	return c.ValueRaw == "" && c.Formula == "" && c.Note == ""
}

type cellKey struct{ row, col int }

// SheetDraft carries the editable sheet fields. Zero values pick defaults.
type SheetDraft struct {
	Title       string
	Description string
	Orientation Orientation
	RowCount    int
	ColumnCount int
}

// SheetWithCells is the full view returned for a single sheet.
type SheetWithCells struct {
	Sheet
	Cells []Cell `json:"cells"`
}

var (
	ErrNotFound        = errors.New("ledger: not found")
	ErrInvalidArgument = errors.New("ledger: invalid argument")
)
