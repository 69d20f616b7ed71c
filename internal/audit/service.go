package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only; there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

const (
	defaultRecent = 50
	maxRecent     = 500
)

// Service stamps and stores audit events. Records are internal-only and are
// exposed solely through admin routes.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !e.Type.valid() {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogAccountToggle records an admin enabling or disabling an account.
func (s *Service) LogAccountToggle(ctx context.Context, actorUserID, targetUserID int64, enabled bool, ip string) error {
	typ := EventAccountDisabled
	if enabled {
		typ = EventAccountEnabled
	}
	return s.Append(ctx, Event{
		Type:        typ,
		UserID:      targetUserID,
		ActorUserID: actorUserID,
		IPAddress:   ip,
	})
}

func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	if limit > maxRecent {
		limit = maxRecent
	}
	return s.repo.Recent(ctx, limit)
}
