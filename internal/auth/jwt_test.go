package auth

import (
	"testing"
	"time"

	"dailyon/internal/config"
	"dailyon/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testAuthConfig(secret string) config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:              secret,
		JWTIssuer:              "dailyon-test",
		AccessTokenTTLSeconds:  1800,
		RefreshTokenTTLSeconds: 1209600,
	}
}

func newTestManager(t *testing.T, secret string) (*Manager, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Unix(1_700_000_000, 0).UTC()}
	m, err := NewManager(testAuthConfig(secret), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m, clock
}

func signRaw(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestNewManager_RequiresSecret(t *testing.T) {
	if _, err := NewManager(testAuthConfig("")); err == nil {
		t.Fatalf("expected error without secret")
	}
}

func TestIssueAccessToken_ValidImmediately(t *testing.T) {
	m, _ := newTestManager(t, testSecret)

	tok, err := m.IssueAccessToken(42, "alice", rbac.NewRoleSet(rbac.RoleUser, rbac.RoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !m.Validate(tok) {
		t.Fatalf("expected freshly issued token to validate")
	}

	c, err := m.ExtractClaims(tok)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.UserID != 42 || c.LoginID != "alice" || c.Type != TokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if !c.Roles.Has(rbac.RoleUser) || !c.Roles.Has(rbac.RoleAdmin) || c.Roles.Len() != 2 {
		t.Fatalf("unexpected roles: %v", c.Roles.Names())
	}
	if c.ID == "" {
		t.Fatalf("expected jti")
	}
	if got := c.ExpiresAt.Sub(c.IssuedAt); got != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %s", got)
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	cases := []struct {
		name  string
		issue func(m *Manager) (string, error)
		ttl   time.Duration
	}{
		{"access", func(m *Manager) (string, error) {
			return m.IssueAccessToken(1, "bob", rbac.NewRoleSet(rbac.RoleUser))
		}, 1800 * time.Second},
		{"refresh", func(m *Manager) (string, error) {
			return m.IssueRefreshToken(1, "bob")
		}, 1209600 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, clock := newTestManager(t, testSecret)
			issuedAt := clock.t

			tok, err := tc.issue(m)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			clock.t = issuedAt.Add(tc.ttl - time.Second)
			if !m.Validate(tok) {
				t.Fatalf("expected token valid one second before expiry")
			}

			clock.t = issuedAt.Add(tc.ttl + time.Second)
			if m.Validate(tok) {
				t.Fatalf("expected token invalid one second after expiry")
			}
		})
	}
}

func TestValidate_RejectsForeignKey(t *testing.T) {
	issuer, _ := newTestManager(t, "another-secret-of-sufficient-length-xx")
	verifier, _ := newTestManager(t, testSecret)

	tok, err := issuer.IssueAccessToken(7, "carol", rbac.NewRoleSet(rbac.RoleUser))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if verifier.Validate(tok) {
		t.Fatalf("expected token signed with a different key to fail")
	}
}

func TestRefreshToken_CarriesNoRoles(t *testing.T) {
	m, _ := newTestManager(t, testSecret)

	pair, err := m.IssuePair(9, "dave", rbac.NewRoleSet(rbac.RoleAdmin, rbac.RoleUser))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != 1800 || pair.RefreshExpiresIn != 1209600 {
		t.Fatalf("unexpected lifetimes: %d / %d", pair.ExpiresIn, pair.RefreshExpiresIn)
	}

	c, err := m.ExtractClaims(pair.RefreshToken)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.Type != TokenTypeRefresh {
		t.Fatalf("expected refresh typ, got %q", c.Type)
	}
	if c.HasRoles() {
		t.Fatalf("refresh token must not carry roles, got %v", c.Roles.Names())
	}
}

func TestValidate_RejectsTamperedAndMalformed(t *testing.T) {
	m, clock := newTestManager(t, testSecret)
	now := clock.t
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"iss":   "dailyon-test",
			"sub":   "erin",
			"iat":   now.Unix(),
			"exp":   now.Add(time.Minute).Unix(),
			"uid":   5,
			"typ":   "access",
			"roles": []string{"USER"},
		}
	}

	cases := []struct {
		name   string
		mutate func(c jwt.MapClaims)
	}{
		{"wrong issuer", func(c jwt.MapClaims) { c["iss"] = "someone-else" }},
		{"missing exp", func(c jwt.MapClaims) { delete(c, "exp") }},
		{"issued in the future", func(c jwt.MapClaims) { c["iat"] = now.Add(time.Hour).Unix() }},
		{"uid not numeric", func(c jwt.MapClaims) { c["uid"] = "5" }},
		{"uid zero", func(c jwt.MapClaims) { c["uid"] = 0 }},
		{"negative uid", func(c jwt.MapClaims) { c["uid"] = -3 }},
		{"empty subject", func(c jwt.MapClaims) { c["sub"] = "" }},
		{"unknown role", func(c jwt.MapClaims) { c["roles"] = []string{"ROOT"} }},
		{"roles not a list", func(c jwt.MapClaims) { c["roles"] = "USER" }},
		{"access without roles", func(c jwt.MapClaims) { delete(c, "roles") }},
		{"roles on refresh", func(c jwt.MapClaims) { c["typ"] = "refresh" }},
		{"unknown typ", func(c jwt.MapClaims) { c["typ"] = "id" }},
	}

	if !m.Validate(signRaw(t, testSecret, base())) {
		t.Fatalf("baseline token should validate")
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			if m.Validate(signRaw(t, testSecret, c)) {
				t.Fatalf("expected token to be rejected")
			}
		})
	}

	t.Run("alg none", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, base()).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if m.Validate(tok) {
			t.Fatalf("expected unsigned token to be rejected")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		for _, s := range []string{"", "abc", "a.b.c"} {
			if m.Validate(s) {
				t.Fatalf("expected %q to be rejected", s)
			}
		}
	})
}

func TestIssue_RejectsBadInput(t *testing.T) {
	m, _ := newTestManager(t, testSecret)

	if _, err := m.IssueAccessToken(0, "x", rbac.NewRoleSet(rbac.RoleUser)); err == nil {
		t.Fatalf("expected error for uid 0")
	}
	if _, err := m.IssueAccessToken(1, "", rbac.NewRoleSet(rbac.RoleUser)); err == nil {
		t.Fatalf("expected error for empty login id")
	}
	if _, err := m.IssueAccessToken(1, "x", rbac.RoleSet{}); err == nil {
		t.Fatalf("expected error for empty role set")
	}
}
