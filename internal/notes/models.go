package notes

import (
	"errors"
	"time"
)

// Note is a sticky note owned by one user. CategoryID 0 means uncategorized;
// Fields then stays empty.
type Note struct {
	ID         int64          `json:"id"`
	OwnerID    int64          `json:"-"`
	CategoryID int64          `json:"categoryId,omitempty"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Color      string         `json:"color,omitempty"`
	Pinned     bool           `json:"pinned"`
	Tags       []string       `json:"tags"`
	Fields     map[string]any `json:"fields"`
	Layout     Layout         `json:"layout"`
	Position   float64        `json:"position"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Layout places a note on the board grid.
type Layout struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func DefaultLayout() Layout { return Layout{Width: 4, Height: 3} }

// Draft carries the editable fields of a note. A nil Layout keeps the
// current one (or the default on create).
type Draft struct {
	CategoryID int64
	Title      string
	Content    string
	Color      string
	Pinned     bool
	Tags       []string
	Fields     map[string]any
	Layout     *Layout
	Position   float64
}

// LayoutMove repositions one note. A nil Layout only changes Position.
type LayoutMove struct {
	NoteID   int64
	Position float64
	Layout   *Layout
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	CategoryID int64
	Keyword    string
}

// FieldType is the value kind a category field accepts.
type FieldType string

const (
	FieldText    FieldType = "TEXT"
	FieldNumber  FieldType = "NUMBER"
	FieldBoolean FieldType = "BOOLEAN"
	FieldDate    FieldType = "DATE"
	FieldTags    FieldType = "TAGS"
)

func (t FieldType) valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldBoolean, FieldDate, FieldTags:
		return true
	}
	return false
}

// Field is one entry of a category's schema.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Order    int       `json:"orderIndex"`
}

// Category groups notes and defines the extra fields they carry.
// Names are unique per owner, ignoring case.
type Category struct {
	ID          int64   `json:"id"`
	OwnerID     int64   `json:"-"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryDraft struct {
	Name        string
	Description string
	Fields      []Field
}

const (
	maxTitleLen = 160
	maxColorLen = 30
	maxTagLen   = 40
	maxTags     = 20

	maxCategoryNameLen = 120
	maxDescriptionLen  = 400
	maxFieldKeyLen     = 60
	maxFieldLabelLen   = 120
	maxFields          = 50

	maxLayoutSpan = 48
	maxLayoutMove = 500
)

var (
	ErrNotFound        = errors.New("notes: not found")
	ErrInvalidArgument = errors.New("notes: invalid argument")
	ErrConflict        = errors.New("notes: conflict")
)
