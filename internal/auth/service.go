package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dailyon/internal/audit"
	"dailyon/internal/rbac"
	"dailyon/internal/users"
	"dailyon/pkg/logger"
)

var (
	// ErrInvalidCredentials covers unknown login id, disabled account and wrong
	// password alike.
	ErrInvalidCredentials  = errors.New("auth: invalid credentials")
	ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")
	ErrLoginIDTaken        = errors.New("auth: login id already registered")
	ErrTooManyAttempts     = errors.New("auth: too many login attempts")
	ErrInvalidSignup       = errors.New("auth: invalid signup request")
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

// UserStore is the credential store used by the auth flows.
type UserStore interface {
	FindByLoginID(ctx context.Context, loginID string) (users.User, error)
	FindByID(ctx context.Context, id int64) (users.User, error)
	Create(ctx context.Context, in users.NewUser) (users.User, error)
}

// Auditor receives auth events. Failures are logged, never returned.
type Auditor interface {
	Append(ctx context.Context, e audit.Event) error
}

type Service struct {
	users   UserStore
	tokens  *Manager
	hasher  PasswordHasher
	limiter LoginLimiter
	audit   Auditor
}

type ServiceOption func(*Service)

func WithLoginLimiter(l LoginLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

func WithAuditor(a Auditor) ServiceOption {
	return func(s *Service) { s.audit = a }
}

func NewService(store UserStore, tokens *Manager, hasher PasswordHasher, opts ...ServiceOption) *Service {
	s := &Service{users: store, tokens: tokens, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type LoginInput struct {
	LoginID  string
	Password string
	IP       string
}

type SignupInput struct {
	LoginID     string
	Password    string
	DisplayName string
	IP          string
}

// RetryAfterError is returned with ErrTooManyAttempts when the window end is known.
type RetryAfterError struct {
	After time.Duration
}

func (e *RetryAfterError) Error() string {
	return "retry after " + e.After.String()
}

func (e *RetryAfterError) Unwrap() error { return ErrTooManyAttempts }

func (s *Service) Login(ctx context.Context, in LoginInput) (TokenPair, error) {
	const op = "auth.Service.Login"
	log := logger.From(ctx)

	if s.limiter != nil && in.LoginID != "" {
		ok, retry, err := s.limiter.Allow(ctx, in.LoginID)
		switch {
		case err != nil:
			// Fail open: a Redis outage must not lock everyone out.
			log.Warn("login limiter unavailable", slog.String("error", err.Error()))
		case !ok:
			flowsTotal.WithLabelValues("login", "throttled").Inc()
			s.record(ctx, audit.Event{Type: audit.EventLoginThrottled, LoginID: in.LoginID, IPAddress: in.IP})
			return TokenPair{}, &RetryAfterError{After: retry}
		}
	}

	u, err := s.users.FindByLoginID(ctx, in.LoginID)
	if errors.Is(err, users.ErrNotFound) {
		s.hasher.CompareDummy(in.Password)
		return TokenPair{}, s.loginFailed(ctx, in, 0, "unknown login id")
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Compare(u.PasswordHash, in.Password) {
		return TokenPair{}, s.loginFailed(ctx, in, u.ID, "password mismatch")
	}
	if !u.Enabled {
		return TokenPair{}, s.loginFailed(ctx, in, u.ID, "account disabled")
	}

	pair, err := s.tokens.IssuePair(u.ID, u.LoginID, u.Roles.OrDefault())
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, u.LoginID); err != nil {
			log.Warn("login limiter reset failed", slog.String("error", err.Error()))
		}
	}
	flowsTotal.WithLabelValues("login", "ok").Inc()
	s.record(ctx, audit.Event{Type: audit.EventLoginSucceeded, UserID: u.ID, LoginID: u.LoginID, IPAddress: in.IP})
	return pair, nil
}

func (s *Service) loginFailed(ctx context.Context, in LoginInput, userID int64, reason string) error {
	flowsTotal.WithLabelValues("login", "failed").Inc()
	logger.From(ctx).Debug("login failed", slog.String("reason", reason))
	s.record(ctx, audit.Event{
		Type:      audit.EventLoginFailed,
		UserID:    userID,
		LoginID:   in.LoginID,
		IPAddress: in.IP,
		Message:   reason,
	})
	return ErrInvalidCredentials
}

// Refresh rotates a refresh token into a fresh pair. Roles always come from
// the store as it is now.
func (s *Service) Refresh(ctx context.Context, refreshToken, ip string) (TokenPair, error) {
	const op = "auth.Service.Refresh"

	claims, err := s.tokens.ExtractClaims(refreshToken)
	if err != nil || claims.Type != TokenTypeRefresh {
		return TokenPair{}, s.refreshRejected(ctx, 0, ip, "invalid token")
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		return TokenPair{}, s.refreshRejected(ctx, claims.UserID, ip, "unknown user")
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !u.Enabled {
		return TokenPair{}, s.refreshRejected(ctx, u.ID, ip, "account disabled")
	}
	if u.LoginID != claims.LoginID {
		return TokenPair{}, s.refreshRejected(ctx, u.ID, ip, "subject mismatch")
	}

	pair, err := s.tokens.IssuePair(u.ID, u.LoginID, u.Roles.OrDefault())
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	flowsTotal.WithLabelValues("refresh", "ok").Inc()
	s.record(ctx, audit.Event{Type: audit.EventTokenRefreshed, UserID: u.ID, LoginID: u.LoginID, IPAddress: ip})
	return pair, nil
}

func (s *Service) refreshRejected(ctx context.Context, userID int64, ip, reason string) error {
	flowsTotal.WithLabelValues("refresh", "rejected").Inc()
	logger.From(ctx).Debug("refresh rejected", slog.String("reason", reason))
	s.record(ctx, audit.Event{Type: audit.EventRefreshRejected, UserID: userID, IPAddress: ip, Message: reason})
	return ErrInvalidRefreshToken
}

// Signup registers a USER account and logs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (TokenPair, error) {
	const op = "auth.Service.Signup"

	loginID := strings.TrimSpace(in.LoginID)
	if loginID == "" {
		return TokenPair{}, fmt.Errorf("%w: login id is required", ErrInvalidSignup)
	}
	if n := len(in.Password); n < minPasswordLen || n > maxPasswordLen {
		return TokenPair{}, fmt.Errorf("%w: password must be %d to %d bytes", ErrInvalidSignup, minPasswordLen, maxPasswordLen)
	}

	if _, err := s.users.FindByLoginID(ctx, loginID); err == nil {
		flowsTotal.WithLabelValues("signup", "conflict").Inc()
		return TokenPair{}, ErrLoginIDTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = loginID
	}

	u, err := s.users.Create(ctx, users.NewUser{
		LoginID:      loginID,
		PasswordHash: hash,
		DisplayName:  displayName,
		Roles:        rbac.NewRoleSet(rbac.RoleUser),
	})
	if errors.Is(err, users.ErrLoginIDTaken) {
		// Lost a race with a concurrent signup for the same id.
		flowsTotal.WithLabelValues("signup", "conflict").Inc()
		return TokenPair{}, ErrLoginIDTaken
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.tokens.IssuePair(u.ID, u.LoginID, u.Roles.OrDefault())
	if err != nil {
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	flowsTotal.WithLabelValues("signup", "ok").Inc()
	s.record(ctx, audit.Event{Type: audit.EventSignup, UserID: u.ID, LoginID: u.LoginID, IPAddress: in.IP})
	return pair, nil
}

func (s *Service) record(ctx context.Context, e audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed",
			slog.String("type", string(e.Type)),
			slog.Int64("user_id", e.UserID),
			slog.String("error", err.Error()),
		)
	}
}
