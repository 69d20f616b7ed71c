package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailyon/internal/audit"
	"dailyon/internal/rbac"
	"dailyon/internal/users"
)

type serviceFixture struct {
	svc     *Service
	tokens  *Manager
	clock   *testClock
	store   *fakeStore
	hasher  *plainHasher
	limiter *fakeLimiter
	audit   *audit.MemoryRepo
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	m, clock := newTestManager(t, testSecret)
	f := serviceFixture{
		tokens:  m,
		clock:   clock,
		store:   newFakeStore(),
		hasher:  &plainHasher{},
		limiter: &fakeLimiter{allowed: true},
		audit:   audit.NewMemoryRepo(),
	}
	f.svc = NewService(f.store, m, f.hasher,
		WithLoginLimiter(f.limiter),
		WithAuditor(audit.NewService(f.audit)),
	)
	return f
}

func (f serviceFixture) auditTypes() []audit.EventType {
	var out []audit.EventType
	for _, e := range f.audit.Events() {
		out = append(out, e.Type)
	}
	return out
}

func TestRefresh_RolesComeFromStore(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 42, LoginID: "user42", PasswordHash: "plain:pw", Enabled: true,
		Roles: rbac.NewRoleSet(rbac.RoleUser)})

	// The first pair was minted while the account was still a GUEST.
	pair, err := f.tokens.IssuePair(42, "user42", rbac.NewRoleSet(rbac.RoleGuest))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	f.clock.Advance(time.Minute)
	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken, "10.0.0.1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	c, err := f.tokens.ExtractClaims(next.AccessToken)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.UserID != 42 {
		t.Fatalf("expected uid 42, got %d", c.UserID)
	}
	if !c.Roles.Has(rbac.RoleUser) || c.Roles.Has(rbac.RoleGuest) {
		t.Fatalf("expected store roles [USER], got %v", c.Roles.Names())
	}

	rc, err := f.tokens.ExtractClaims(next.RefreshToken)
	if err != nil || rc.Type != TokenTypeRefresh || rc.HasRoles() {
		t.Fatalf("expected role-free refresh token, got %+v %v", rc, err)
	}

	types := f.auditTypes()
	if len(types) != 1 || types[0] != audit.EventTokenRefreshed {
		t.Fatalf("expected token_refreshed audit, got %v", types)
	}
}

func TestRefresh_Rejections(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 1, LoginID: "alive", Enabled: true})
	f.store.put(users.User{ID: 2, LoginID: "off", Enabled: false})

	access, _ := f.tokens.IssueAccessToken(1, "alive", rbac.NewRoleSet(rbac.RoleUser))
	disabled, _ := f.tokens.IssueRefreshToken(2, "off")
	missing, _ := f.tokens.IssueRefreshToken(3, "gone")
	renamed, _ := f.tokens.IssueRefreshToken(1, "old-name")

	cases := map[string]string{
		"access token":     access,
		"disabled account": disabled,
		"missing account":  missing,
		"subject mismatch": renamed,
		"garbage":          "x.y.z",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.Refresh(context.Background(), tok, ""); !errors.Is(err, ErrInvalidRefreshToken) {
				t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		tok, _ := f.tokens.IssueRefreshToken(1, "alive")
		f.clock.Advance(f.tokens.RefreshTTL() + time.Second)
		if _, err := f.svc.Refresh(context.Background(), tok, ""); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
		}
	})
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 20, LoginID: "paula", PasswordHash: "plain:right", Enabled: true})
	f.store.put(users.User{ID: 21, LoginID: "quinn", PasswordHash: "plain:right", Enabled: false})

	_, wrongPassword := f.svc.Login(context.Background(), LoginInput{LoginID: "paula", Password: "wrong"})
	_, unknownID := f.svc.Login(context.Background(), LoginInput{LoginID: "nobody", Password: "right"})
	_, disabled := f.svc.Login(context.Background(), LoginInput{LoginID: "quinn", Password: "right"})

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown id": unknownID, "disabled": disabled} {
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongPassword.Error() != unknownID.Error() || unknownID.Error() != disabled.Error() {
		t.Fatalf("failure messages differ: %q / %q / %q", wrongPassword, unknownID, disabled)
	}
	if f.hasher.dummyCalls != 1 {
		t.Fatalf("expected one dummy compare for the unknown id, got %d", f.hasher.dummyCalls)
	}
	if len(f.limiter.resets) != 0 {
		t.Fatalf("failed logins must not reset the limiter")
	}
}

func TestLogin_Success(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 22, LoginID: "rita", PasswordHash: "plain:right", Enabled: true,
		Roles: rbac.NewRoleSet(rbac.RoleAdmin, rbac.RoleUser)})

	pair, err := f.svc.Login(context.Background(), LoginInput{LoginID: "Rita", Password: "right", IP: "1.1.1.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	c, err := f.tokens.ExtractClaims(pair.AccessToken)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.UserID != 22 || !c.Roles.Has(rbac.RoleAdmin) {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if len(f.limiter.resets) != 1 || f.limiter.resets[0] != "rita" {
		t.Fatalf("expected limiter reset for rita, got %v", f.limiter.resets)
	}
	ev := f.audit.Events()
	if len(ev) != 1 || ev[0].Type != audit.EventLoginSucceeded || ev[0].IPAddress != "1.1.1.1" {
		t.Fatalf("unexpected audit trail: %+v", ev)
	}
}

func TestLogin_Throttled(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 23, LoginID: "sam", PasswordHash: "plain:right", Enabled: true})
	f.limiter.allowed = false
	f.limiter.retry = 90 * time.Second

	_, err := f.svc.Login(context.Background(), LoginInput{LoginID: "sam", Password: "right"})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	var ra *RetryAfterError
	if !errors.As(err, &ra) || ra.After != 90*time.Second {
		t.Fatalf("expected retry-after 90s, got %v", err)
	}
}

func TestLogin_LimiterOutageFailsOpen(t *testing.T) {
	f := newServiceFixture(t)
	f.store.put(users.User{ID: 24, LoginID: "tess", PasswordHash: "plain:right", Enabled: true})
	f.limiter.err = errors.New("redis down")

	if _, err := f.svc.Login(context.Background(), LoginInput{LoginID: "tess", Password: "right"}); err != nil {
		t.Fatalf("expected login to succeed without limiter, got %v", err)
	}
}

func TestSignup(t *testing.T) {
	f := newServiceFixture(t)

	pair, err := f.svc.Signup(context.Background(), SignupInput{LoginID: "uma", Password: "long-enough", DisplayName: "Uma"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	c, err := f.tokens.ExtractClaims(pair.AccessToken)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if c.LoginID != "uma" || c.Roles.Len() != 1 || !c.Roles.Has(rbac.RoleUser) {
		t.Fatalf("expected USER-only token for uma, got %+v", c)
	}

	u, err := f.store.FindByLoginID(context.Background(), "uma")
	if err != nil || !u.Enabled || u.PasswordHash != "plain:long-enough" {
		t.Fatalf("unexpected stored user: %+v %v", u, err)
	}

	if _, err := f.svc.Signup(context.Background(), SignupInput{LoginID: "UMA", Password: "long-enough"}); !errors.Is(err, ErrLoginIDTaken) {
		t.Fatalf("expected ErrLoginIDTaken, got %v", err)
	}

	for _, in := range []SignupInput{
		{LoginID: "  ", Password: "long-enough"},
		{LoginID: "vera", Password: "short"},
	} {
		if _, err := f.svc.Signup(context.Background(), in); !errors.Is(err, ErrInvalidSignup) {
			t.Fatalf("%+v: expected ErrInvalidSignup, got %v", in, err)
		}
	}
}
