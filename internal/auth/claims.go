package auth

import (
	"time"

	"dailyon/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

func (t TokenType) valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// wireClaims is the JSON payload signed into every token.
// Refresh tokens never carry roles.
type wireClaims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"uid"`
	Roles     []string  `json:"roles,omitempty"`
	TokenType TokenType `json:"typ"`
}

// Claims is the decoded, validated view of a token.
type Claims struct {
	ID        string
	UserID    int64
	LoginID   string
	Roles     rbac.RoleSet
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasRoles reports whether the token embedded any role claim.
func (c Claims) HasRoles() bool { return !c.Roles.IsEmpty() }
