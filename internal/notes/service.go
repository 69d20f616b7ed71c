package notes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Repository is owner-scoped: a note or category of another owner is
// indistinguishable from a missing one.
type Repository interface {
	Insert(ctx context.Context, n Note) (Note, error)
	Get(ctx context.Context, ownerID, id int64) (Note, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Note, error)
	Update(ctx context.Context, n Note) error
	Delete(ctx context.Context, ownerID, id int64) error
	MoveNotes(ctx context.Context, ownerID int64, moves []LayoutMove, at time.Time) error

	InsertCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, ownerID, id int64) (Category, error)
	ListCategories(ctx context.Context, ownerID int64) ([]Category, error)
	UpdateCategory(ctx context.Context, c Category) error
	DeleteCategory(ctx context.Context, ownerID, id int64) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// List returns the owner's notes matching f, pinned first, then by position,
// then newest. Keyword matches title, content or a tag, ignoring case.
func (s *Service) List(ctx context.Context, ownerID int64, f ListFilter) ([]Note, error) {
	all, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(f.Keyword))
	out := all[:0]
	for _, n := range all {
		if f.CategoryID != 0 && n.CategoryID != f.CategoryID {
			continue
		}
		if kw != "" && !n.mentions(kw) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (n Note) mentions(kw string) bool {
	if strings.Contains(strings.ToLower(n.Title), kw) || strings.Contains(strings.ToLower(n.Content), kw) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), kw) {
			return true
		}
	}
	return false
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Note, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, ownerID int64, d Draft) (Note, error) {
	d, err := s.normalize(ctx, ownerID, d)
	if err != nil {
		return Note{}, err
	}
	layout := DefaultLayout()
	if d.Layout != nil {
		layout = *d.Layout
	}
	now := s.clock().UTC()
	return s.repo.Insert(ctx, Note{
		OwnerID:    ownerID,
		CategoryID: d.CategoryID,
		Title:      d.Title,
		Content:    d.Content,
		Color:      d.Color,
		Pinned:     d.Pinned,
		Tags:       d.Tags,
		Fields:     d.Fields,
		Layout:     layout,
		Position:   d.Position,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *Service) Update(ctx context.Context, ownerID, id int64, d Draft) (Note, error) {
	n, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Note{}, err
	}
	d, err = s.normalize(ctx, ownerID, d)
	if err != nil {
		return Note{}, err
	}
	n.CategoryID, n.Fields = d.CategoryID, d.Fields
	n.Title, n.Content, n.Color = d.Title, d.Content, d.Color
	n.Pinned, n.Tags, n.Position = d.Pinned, d.Tags, d.Position
	if d.Layout != nil {
		n.Layout = *d.Layout
	}
	n.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// MoveNotes updates board positions in one batch. Every note must belong to
// the owner; otherwise nothing moves.
func (s *Service) MoveNotes(ctx context.Context, ownerID int64, moves []LayoutMove) error {
	if len(moves) == 0 {
		return nil
	}
	if len(moves) > maxLayoutMove {
		return fmt.Errorf("%w: at most %d notes per move", ErrInvalidArgument, maxLayoutMove)
	}
	seen := make(map[int64]struct{}, len(moves))
	for _, m := range moves {
		if m.NoteID <= 0 {
			return fmt.Errorf("%w: note id must be positive", ErrInvalidArgument)
		}
		if _, dup := seen[m.NoteID]; dup {
			return fmt.Errorf("%w: note %d moved twice", ErrInvalidArgument, m.NoteID)
		}
		seen[m.NoteID] = struct{}{}
		if m.Layout != nil {
			if err := checkLayout(*m.Layout); err != nil {
				return err
			}
		}
	}
	return s.repo.MoveNotes(ctx, ownerID, moves, s.clock().UTC())
}

func (s *Service) normalize(ctx context.Context, ownerID int64, d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" || utf8.RuneCountInString(d.Title) > maxTitleLen {
		return Draft{}, fmt.Errorf("%w: title must be 1..%d characters", ErrInvalidArgument, maxTitleLen)
	}
	d.Color = strings.TrimSpace(d.Color)
	if len(d.Color) > maxColorLen {
		return Draft{}, fmt.Errorf("%w: color", ErrInvalidArgument)
	}
	if d.Layout != nil {
		if err := checkLayout(*d.Layout); err != nil {
			return Draft{}, err
		}
	}

	tags, err := normalizeTags(d.Tags)
	if err != nil {
		return Draft{}, err
	}
	d.Tags = tags

	switch {
	case d.CategoryID < 0:
		return Draft{}, fmt.Errorf("%w: categoryId", ErrInvalidArgument)
	case d.CategoryID == 0:
		if len(d.Fields) > 0 {
			return Draft{}, fmt.Errorf("%w: fields need a category", ErrInvalidArgument)
		}
		d.Fields = map[string]any{}
	default:
		c, err := s.repo.GetCategory(ctx, ownerID, d.CategoryID)
		if err != nil {
			return Draft{}, err
		}
		if d.Fields, err = c.prepareValues(d.Fields); err != nil {
			return Draft{}, err
		}
	}
	return d, nil
}

func normalizeTags(in []string) ([]string, error) {
	tags := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLen {
			return nil, fmt.Errorf("%w: tag %q too long", ErrInvalidArgument, t)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return nil, fmt.Errorf("%w: at most %d tags", ErrInvalidArgument, maxTags)
	}
	return tags, nil
}

func checkLayout(l Layout) error {
	if l.X < 0 || l.Y < 0 || l.Width < 1 || l.Height < 1 || l.Width > maxLayoutSpan || l.Height > maxLayoutSpan {
		return fmt.Errorf("%w: layout must sit at x,y >= 0 with width and height 1..%d", ErrInvalidArgument, maxLayoutSpan)
	}
	return nil
}
