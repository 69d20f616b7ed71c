package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dailyon/internal/users"
	"dailyon/pkg/logger"
)

const defaultLookupTimeout = 3 * time.Second

// UserLookup is the slice of the user store the resolver needs.
type UserLookup interface {
	FindByLoginID(ctx context.Context, loginID string) (users.User, error)
}

// Resolver turns a bearer token into an Identity.
type Resolver struct {
	tokens  *Manager
	users   UserLookup
	timeout time.Duration
}

func NewResolver(tokens *Manager, lookup UserLookup, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Resolver{tokens: tokens, users: lookup, timeout: timeout}
}

// Resolve returns the identity behind an access token. Anything short of a
// valid access token for an existing, enabled account with a matching id
// resolves to no identity; the reason is only logged.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, bool) {
	log := logger.From(ctx)

	claims, err := r.tokens.ExtractClaims(token)
	if err != nil {
		resolutionsTotal.WithLabelValues("invalid_token").Inc()
		log.Debug("token rejected", slog.String("error", err.Error()))
		return Identity{}, false
	}
	if claims.Type != TokenTypeAccess {
		resolutionsTotal.WithLabelValues("wrong_token_type").Inc()
		log.Debug("token rejected", slog.String("typ", string(claims.Type)))
		return Identity{}, false
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u, err := r.users.FindByLoginID(lookupCtx, claims.LoginID)
	switch {
	case errors.Is(err, users.ErrNotFound):
		resolutionsTotal.WithLabelValues("unknown_user").Inc()
		return Identity{}, false
	case err != nil:
		resolutionsTotal.WithLabelValues("lookup_error").Inc()
		log.Warn("user lookup failed", slog.String("error", err.Error()))
		return Identity{}, false
	}

	if !u.Enabled {
		resolutionsTotal.WithLabelValues("disabled").Inc()
		return Identity{}, false
	}
	// The login id was deleted and re-registered since this token was issued.
	if u.ID != claims.UserID {
		resolutionsTotal.WithLabelValues("id_mismatch").Inc()
		return Identity{}, false
	}

	resolutionsTotal.WithLabelValues("resolved").Inc()
	return Identity{
		UserID:      u.ID,
		LoginID:     u.LoginID,
		DisplayName: u.DisplayName,
		Roles:       u.Roles.OrDefault(),
		Enabled:     u.Enabled,
	}, true
}
