package auth

import (
	"errors"
	"fmt"
	"time"

	"dailyon/internal/config"
	"dailyon/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "dailyon"

var (
	ErrMalformedClaims = errors.New("auth: malformed token claims")
	errMissingSecret   = errors.New("JWT_SECRET is required")
)

// Manager signs and verifies HS256 tokens.
// The key is fixed at construction and never mutated, so a Manager is safe
// for concurrent use without locking.
type Manager struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

type Option func(*Manager)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(cfg config.AuthConfig, opts ...Option) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errMissingSecret
	}
	accessTTL, refreshTTL := cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be > 0")
	}

	key := make([]byte, len(cfg.JWTSecret))
	copy(key, cfg.JWTSecret)

	m := &Manager{
		key:        key,
		issuer:     cfg.JWTIssuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	if m.issuer == "" {
		m.issuer = defaultIssuer
	}
	for _, opt := range opts {
		opt(m)
	}

	// No leeway: a token is dead the second after exp.
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// TokenPair is returned by every flow that mints credentials.
// The expiry fields are lifetimes in seconds from issuance.
type TokenPair struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

const bearerTokenType = "Bearer"

func (m *Manager) IssueAccessToken(userID int64, loginID string, roles rbac.RoleSet) (string, error) {
	if roles.IsEmpty() {
		return "", errors.New("access token requires at least one role")
	}
	return m.issue(TokenTypeAccess, userID, loginID, roles.Names(), m.accessTTL)
}

func (m *Manager) IssueRefreshToken(userID int64, loginID string) (string, error) {
	return m.issue(TokenTypeRefresh, userID, loginID, nil, m.refreshTTL)
}

func (m *Manager) IssuePair(userID int64, loginID string, roles rbac.RoleSet) (TokenPair, error) {
	access, err := m.IssueAccessToken(userID, loginID, roles)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.IssueRefreshToken(userID, loginID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        bearerTokenType,
		ExpiresIn:        int64(m.AccessTTL() / time.Second),
		RefreshExpiresIn: int64(m.RefreshTTL() / time.Second),
	}, nil
}

// Validate reports whether token is well-formed, signed with this key,
// unexpired and carries a supported claims shape. It never returns an error.
func (m *Manager) Validate(token string) bool {
	_, err := m.ExtractClaims(token)
	return err == nil
}

// ExtractClaims verifies token and decodes it into Claims.
func (m *Manager) ExtractClaims(token string) (Claims, error) {
	var wc wireClaims
	_, err := m.parser.ParseWithClaims(token, &wc, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	if err != nil {
		return Claims{}, err
	}
	return decodeClaims(wc)
}

func decodeClaims(wc wireClaims) (Claims, error) {
	if !wc.TokenType.valid() {
		return Claims{}, fmt.Errorf("%w: unknown typ %q", ErrMalformedClaims, wc.TokenType)
	}
	if wc.UserID <= 0 {
		return Claims{}, fmt.Errorf("%w: uid", ErrMalformedClaims)
	}
	if wc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: sub", ErrMalformedClaims)
	}

	out := Claims{
		ID:      wc.ID,
		UserID:  wc.UserID,
		LoginID: wc.Subject,
		Type:    wc.TokenType,
	}
	if wc.IssuedAt != nil {
		out.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		out.ExpiresAt = wc.ExpiresAt.Time
	}

	switch wc.TokenType {
	case TokenTypeRefresh:
		if len(wc.Roles) > 0 {
			return Claims{}, fmt.Errorf("%w: roles on refresh token", ErrMalformedClaims)
		}
	case TokenTypeAccess:
		roles, err := rbac.ParseRoleSet(wc.Roles)
		if err != nil {
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformedClaims, err)
		}
		if roles.IsEmpty() {
			return Claims{}, fmt.Errorf("%w: access token without roles", ErrMalformedClaims)
		}
		out.Roles = roles
	}
	return out, nil
}

func (m *Manager) issue(typ TokenType, userID int64, loginID string, roles []string, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", errors.New("user id must be > 0")
	}
	if loginID == "" {
		return "", errors.New("login id is required")
	}

	now := m.now()
	wc := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   loginID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		UserID:    userID,
		Roles:     roles,
		TokenType: typ,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(m.key)
}
