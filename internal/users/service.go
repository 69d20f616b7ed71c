package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	searchLimit     = 10
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service serves profile, member search and admin account management.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Profile(ctx context.Context, id int64) (Profile, error) {
	if id <= 0 {
		return Profile{}, ErrInvalidArgument
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	return u.Profile(), nil
}

// Search returns at most ten members whose login id or display name contains keyword.
// A blank keyword yields an empty result rather than the whole directory.
func (s *Service) Search(ctx context.Context, keyword string) ([]Summary, error) {
	if strings.TrimSpace(keyword) == "" {
		return []Summary{}, nil
	}
	found, err := s.repo.Search(ctx, keyword, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(found))
	for i, u := range found {
		out[i] = u.Summary()
	}
	return out, nil
}

// List pages through all accounts. page is zero-based.
func (s *Service) List(ctx context.Context, page, size int) ([]Profile, error) {
	if page < 0 {
		return nil, ErrInvalidArgument
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	found, err := s.repo.List(ctx, page*size, size)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, len(found))
	for i, u := range found {
		out[i] = u.Profile()
	}
	return out, nil
}

// SetEnabled toggles an account. Admins cannot disable themselves.
func (s *Service) SetEnabled(ctx context.Context, actorID, targetID int64, enabled bool) (Profile, error) {
	if targetID <= 0 {
		return Profile{}, ErrInvalidArgument
	}
	if actorID == targetID && !enabled {
		return Profile{}, fmt.Errorf("%w: cannot disable own account", ErrInvalidArgument)
	}
	u, err := s.repo.SetEnabled(ctx, targetID, enabled)
	if err != nil {
		return Profile{}, err
	}
	return u.Profile(), nil
}

// ExistingIDs returns the ids that match an account, in the order given.
func (s *Service) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
