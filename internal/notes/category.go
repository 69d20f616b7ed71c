package notes

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var (
	errNotNumber  = errors.New("not a number")
	errNotBoolean = errors.New("not a boolean")
	errNotDate    = errors.New("date must be YYYY-MM-DD")
	errNotTags    = errors.New("tags must be a list or comma separated")
)

// ListCategories returns the owner's categories ordered by name, ignoring case.
func (s *Service) ListCategories(ctx context.Context, ownerID int64) ([]Category, error) {
	out, err := s.repo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, d CategoryDraft) (Category, error) {
	d, err := normalizeCategory(d)
	if err != nil {
		return Category{}, err
	}
	now := s.clock().UTC()
	return s.repo.InsertCategory(ctx, Category{
		OwnerID:     ownerID,
		Name:        d.Name,
		Description: d.Description,
		Fields:      d.Fields,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// UpdateCategory replaces name, description and schema. Values already
// stored on notes are left as they are until the note is next saved.
func (s *Service) UpdateCategory(ctx context.Context, ownerID, id int64, d CategoryDraft) (Category, error) {
	c, err := s.repo.GetCategory(ctx, ownerID, id)
	if err != nil {
		return Category{}, err
	}
	if d, err = normalizeCategory(d); err != nil {
		return Category{}, err
	}
	c.Name, c.Description, c.Fields = d.Name, d.Description, d.Fields
	c.UpdatedAt = s.clock().UTC()
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	return s.repo.DeleteCategory(ctx, ownerID, id)
}

func normalizeCategory(d CategoryDraft) (CategoryDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" || utf8.RuneCountInString(d.Name) > maxCategoryNameLen {
		return CategoryDraft{}, fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidArgument, maxCategoryNameLen)
	}
	d.Description = strings.TrimSpace(d.Description)
	if utf8.RuneCountInString(d.Description) > maxDescriptionLen {
		return CategoryDraft{}, fmt.Errorf("%w: description too long", ErrInvalidArgument)
	}
	if len(d.Fields) > maxFields {
		return CategoryDraft{}, fmt.Errorf("%w: at most %d fields", ErrInvalidArgument, maxFields)
	}

	fields := make([]Field, 0, len(d.Fields))
	keys := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		f.Key = strings.TrimSpace(f.Key)
		if len(f.Key) > maxFieldKeyLen || !fieldKeyPattern.MatchString(f.Key) {
			return CategoryDraft{}, fmt.Errorf("%w: field key %q", ErrInvalidArgument, f.Key)
		}
		if _, dup := keys[f.Key]; dup {
			return CategoryDraft{}, fmt.Errorf("%w: field key %q repeated", ErrInvalidArgument, f.Key)
		}
		keys[f.Key] = struct{}{}

		f.Label = strings.TrimSpace(f.Label)
		if f.Label == "" {
			f.Label = f.Key
		}
		if utf8.RuneCountInString(f.Label) > maxFieldLabelLen {
			return CategoryDraft{}, fmt.Errorf("%w: field label too long", ErrInvalidArgument)
		}
		f.Type = FieldType(strings.ToUpper(strings.TrimSpace(string(f.Type))))
		if f.Type == "" {
			f.Type = FieldText
		}
		if !f.Type.valid() {
			return CategoryDraft{}, fmt.Errorf("%w: field type %q", ErrInvalidArgument, f.Type)
		}
		fields = append(fields, f)
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	d.Fields = fields
	return d, nil
}

// prepareValues keeps only the keys the schema declares, coerced to the
// field type. A required field may not be missing or blank.
func (c Category) prepareValues(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		raw, ok := in[f.Key]
		if !ok || blank(raw) {
			if f.Required {
				return nil, fmt.Errorf("%w: field %q is required", ErrInvalidArgument, f.Label)
			}
			continue
		}
		v, err := coerce(f.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q (%v)", ErrInvalidArgument, f.Label, err)
		}
		out[f.Key] = v
	}
	return out, nil
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func coerce(t FieldType, v any) (any, error) {
	switch t {
	case FieldNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, errNotNumber
			}
			return f, nil
		}
		return nil, errNotNumber
	case FieldBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case float64:
			return b != 0, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "1", "true", "yes", "y":
				return true, nil
			}
			return false, nil
		}
		return nil, errNotBoolean
	case FieldDate:
		s, ok := v.(string)
		if !ok {
			return nil, errNotDate
		}
		s = strings.TrimSpace(s)
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return nil, errNotDate
		}
		return s, nil
	case FieldTags:
		var parts []string
		switch l := v.(type) {
		case string:
			parts = strings.Split(l, ",")
		case []string:
			parts = l
		case []any:
			for _, e := range l {
				parts = append(parts, fmt.Sprint(e))
			}
		default:
			return nil, errNotTags
		}
		tags := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				tags = append(tags, p)
			}
		}
		return tags, nil
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
}
