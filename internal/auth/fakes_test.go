package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"dailyon/internal/rbac"
	"dailyon/internal/users"
)

// fakeStore is a user store with caller-chosen ids.
type fakeStore struct {
	mu     sync.Mutex
	byID   map[int64]users.User
	nextID int64
	delay  time.Duration
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[int64]users.User{}, nextID: 1000}
}

func (s *fakeStore) put(u users.User) users.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Roles.IsEmpty() {
		u.Roles = rbac.NewRoleSet(rbac.RoleUser)
	}
	s.byID[u.ID] = u
	return u
}

func (s *fakeStore) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *fakeStore) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return s.err
	}
	select {
	case <-time.After(s.delay):
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeStore) FindByLoginID(ctx context.Context, loginID string) (users.User, error) {
	if err := s.wait(ctx); err != nil {
		return users.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.LoginID == strings.ToLower(strings.TrimSpace(loginID)) {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (s *fakeStore) FindByID(ctx context.Context, id int64) (users.User, error) {
	if err := s.wait(ctx); err != nil {
		return users.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (s *fakeStore) Create(ctx context.Context, in users.NewUser) (users.User, error) {
	if _, err := s.FindByLoginID(ctx, in.LoginID); err == nil {
		return users.User{}, users.ErrLoginIDTaken
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()
	return s.put(users.User{
		ID:           id,
		LoginID:      strings.ToLower(strings.TrimSpace(in.LoginID)),
		PasswordHash: in.PasswordHash,
		DisplayName:  in.DisplayName,
		Roles:        in.Roles.OrDefault(),
		Enabled:      true,
	}), nil
}

// plainHasher keeps tests fast; bcrypt itself is covered in password_test.go.
type plainHasher struct {
	dummyCalls int
}

func (h *plainHasher) Hash(plain string) (string, error) { return "plain:" + plain, nil }

func (h *plainHasher) Compare(hash, plain string) bool { return hash == "plain:"+plain }

func (h *plainHasher) CompareDummy(string) { h.dummyCalls++ }

type fakeLimiter struct {
	allowed bool
	retry   time.Duration
	err     error
	resets  []string
}

func (l *fakeLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return l.allowed, l.retry, l.err
}

func (l *fakeLimiter) Reset(_ context.Context, loginID string) error {
	l.resets = append(l.resets, loginID)
	return nil
}
