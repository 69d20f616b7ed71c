package planner

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Repository writes are owner-scoped; reads through GetVisible and
// ListVisible also reach participants.
type Repository interface {
	Insert(ctx context.Context, e Event) (Event, error)
	GetVisible(ctx context.Context, userID, id int64) (Event, error)
	GetByShareCode(ctx context.Context, code string) (Event, error)
	ListVisible(ctx context.Context, userID int64) ([]Event, error)
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, ownerID, id int64) error
}

// Directory reports which of ids belong to existing accounts, keeping order.
type Directory interface {
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

const (
	maxTitleLen     = 160
	maxParticipants = 50
)

type Service struct {
	repo  Repository
	dir   Directory
	clock func() time.Time
}

type ServiceOption func(*Service)

// WithDirectory drops participant ids that match no account. Without one,
// every positive id is kept.
func WithDirectory(d Directory) ServiceOption {
	return func(s *Service) { s.dir = d }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the events userID owns or joins that overlap [from, to],
// ordered by start. Empty bounds are open.
func (s *Service) List(ctx context.Context, userID int64, from, to string) ([]Event, error) {
	lo, hi, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Event, 0, len(all))
	for _, e := range all {
		// Dates are validated on write, so string order equals date order.
		if hi != "" && e.StartDate > hi {
			continue
		}
		if lo != "" && e.EndDate < lo {
			continue
		}
		e.Editable = e.OwnerID == userID
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate < out[j].StartDate
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (Event, error) {
	e, err := s.repo.GetVisible(ctx, userID, id)
	if err != nil {
		return Event{}, err
	}
	e.Editable = e.OwnerID == userID
	return e, nil
}

func (s *Service) Create(ctx context.Context, ownerID int64, d Draft) (Event, error) {
	d, err := s.prepare(ctx, ownerID, d)
	if err != nil {
		return Event{}, err
	}
	now := s.clock().UTC()
	e := Event{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	apply(&e, d)
	e, err = s.repo.Insert(ctx, e)
	if err != nil {
		return Event{}, err
	}
	e.Editable = true
	return e, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, d Draft) (Event, error) {
	d, err := s.prepare(ctx, userID, d)
	if err != nil {
		return Event{}, err
	}
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return Event{}, err
	}
	apply(&e, d)
	e.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, err
	}
	e.Editable = true
	return e, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

// owned loads an event for a write. A participant gets ErrForbidden; anyone
// else gets ErrNotFound.
func (s *Service) owned(ctx context.Context, userID, id int64) (Event, error) {
	e, err := s.repo.GetVisible(ctx, userID, id)
	if err != nil {
		return Event{}, err
	}
	if e.OwnerID != userID {
		return Event{}, ErrForbidden
	}
	return e, nil
}

func (s *Service) prepare(ctx context.Context, ownerID int64, d Draft) (Draft, error) {
	d, err := normalize(d)
	if err != nil {
		return Draft{}, err
	}
	ids, err := participants(ownerID, d.ParticipantIDs)
	if err != nil {
		return Draft{}, err
	}
	if s.dir != nil && len(ids) > 0 {
		if ids, err = s.dir.ExistingIDs(ctx, ids); err != nil {
			return Draft{}, fmt.Errorf("planner: resolve participants: %w", err)
		}
	}
	d.ParticipantIDs = ids
	return d, nil
}

// participants drops the owner and repeats, keeping first-seen order.
func participants(ownerID int64, in []int64) ([]int64, error) {
	out := make([]int64, 0, len(in))
	for _, id := range in {
		if id <= 0 {
			return nil, fmt.Errorf("%w: participant id must be positive", ErrInvalidArgument)
		}
		if id == ownerID || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	if len(out) > maxParticipants {
		return nil, fmt.Errorf("%w: at most %d participants", ErrInvalidArgument, maxParticipants)
	}
	return out, nil
}

// SetShared turns the public link on or off. Turning it on always mints a new
// code, so re-sharing invalidates links handed out earlier.
func (s *Service) SetShared(ctx context.Context, userID, id int64, shared bool) (Event, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return Event{}, err
	}
	e.Shared = shared
	e.ShareCode = ""
	if shared {
		e.ShareCode = uuid.NewString()
	}
	e.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, e); err != nil {
		return Event{}, err
	}
	e.Editable = true
	return e, nil
}

// FindShared resolves a share code. Unshared events read as not found.
func (s *Service) FindShared(ctx context.Context, code string) (PublicEvent, error) {
	if _, err := uuid.Parse(code); err != nil {
		return PublicEvent{}, ErrNotFound
	}
	e, err := s.repo.GetByShareCode(ctx, code)
	if err != nil {
		return PublicEvent{}, err
	}
	if !e.Shared {
		return PublicEvent{}, ErrNotFound
	}
	return e.Public(), nil
}

func apply(e *Event, d Draft) {
	e.Title = d.Title
	e.Description = d.Description
	e.StartDate, e.EndDate = d.StartDate, d.EndDate
	e.StartTime, e.EndTime = d.StartTime, d.EndTime
	e.Location = d.Location
	e.Tags = d.Tags
	e.ParticipantIDs = d.ParticipantIDs
}

func normalize(d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" || utf8.RuneCountInString(d.Title) > maxTitleLen {
		return Draft{}, fmt.Errorf("%w: title must be 1..%d characters", ErrInvalidArgument, maxTitleLen)
	}

	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: startDate", ErrInvalidArgument)
	}
	if d.EndDate == "" {
		d.EndDate = d.StartDate
	}
	end, err := time.Parse(DateLayout, d.EndDate)
	if err != nil {
		return Draft{}, fmt.Errorf("%w: endDate", ErrInvalidArgument)
	}
	if end.Before(start) {
		return Draft{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidArgument)
	}

	for _, t := range []string{d.StartTime, d.EndTime} {
		if t == "" {
			continue
		}
		if _, err := time.Parse(TimeLayout, t); err != nil {
			return Draft{}, fmt.Errorf("%w: time %q", ErrInvalidArgument, t)
		}
	}
	if d.StartDate == d.EndDate && d.StartTime != "" && d.EndTime != "" && d.EndTime < d.StartTime {
		return Draft{}, fmt.Errorf("%w: endTime before startTime", ErrInvalidArgument)
	}

	tags := make([]string, 0, len(d.Tags))
	seen := map[string]struct{}{}
	for _, t := range d.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	d.Tags = tags
	d.Location = strings.TrimSpace(d.Location)
	return d, nil
}

func parseRange(from, to string) (string, string, error) {
	for _, v := range []string{from, to} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			return "", "", fmt.Errorf("%w: date %q", ErrInvalidArgument, v)
		}
	}
	if from != "" && to != "" && to < from {
		return "", "", fmt.Errorf("%w: range end before start", ErrInvalidArgument)
	}
	return from, to, nil
}
