package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]User
	byLogin map[string]int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[int64]User{}, byLogin: map[string]int64{}}
}

func (r *MemoryRepo) FindByLoginID(ctx context.Context, loginID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byLogin[normalizeLoginID(loginID)]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id int64) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) Create(ctx context.Context, in NewUser) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	key := normalizeLoginID(in.LoginID)
	if key == "" {
		return User{}, ErrInvalidArgument
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byLogin[key]; ok {
		return User{}, ErrLoginIDTaken
	}
	r.nextID++
	now := time.Now().UTC()
	u := User{
		ID:           r.nextID,
		LoginID:      key,
		PasswordHash: in.PasswordHash,
		DisplayName:  in.DisplayName,
		Roles:        in.Roles.OrDefault(),
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	r.byLogin[key] = u.ID
	return u, nil
}

func (r *MemoryRepo) SetEnabled(ctx context.Context, id int64, enabled bool) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Enabled = enabled
	u.UpdatedAt = time.Now().UTC()
	r.byID[id] = u
	return u, nil
}

func (r *MemoryRepo) Search(ctx context.Context, keyword string, limit int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kw := strings.ToLower(strings.TrimSpace(keyword))
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0)
	for _, u := range r.byID {
		if strings.Contains(strings.ToLower(u.LoginID), kw) || strings.Contains(strings.ToLower(u.DisplayName), kw) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context, offset, limit int) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []User{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func normalizeLoginID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
