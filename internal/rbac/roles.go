package rbac

import (
	"fmt"
	"strings"
)

// Role is a privilege level. The set is closed; keep names stable, they are
// part of the token and storage contracts.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleGuest Role = "GUEST"
)

const authorityPrefix = "ROLE_"

// All lists every known role in privilege order.
var All = []Role{RoleAdmin, RoleUser, RoleGuest}

// ParseRole accepts the bare name ("USER") or the authority form ("ROLE_USER").
func ParseRole(s string) (Role, error) {
	name := strings.TrimPrefix(strings.TrimSpace(s), authorityPrefix)
	switch Role(name) {
	case RoleAdmin, RoleUser, RoleGuest:
		return Role(name), nil
	default:
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Authority returns the prefixed wire form, e.g. ROLE_USER.
func (r Role) Authority() string { return authorityPrefix + string(r) }

// RoleSet is an immutable set of roles. The zero value is empty.
type RoleSet struct {
	m map[Role]struct{}
}

func NewRoleSet(roles ...Role) RoleSet {
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return RoleSet{m: m}
}

// ParseRoleSet parses role names and fails on the first unknown one.
func ParseRoleSet(names []string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return RoleSet{}, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s.m[r]
	return ok
}

func (s RoleSet) Len() int { return len(s.m) }

func (s RoleSet) IsEmpty() bool { return len(s.m) == 0 }

// Roles returns the members in privilege order (see All).
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s.m))
	for _, r := range All {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Names returns the bare role names in privilege order, as embedded in access tokens.
func (s RoleSet) Names() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// Authorities returns the ROLE_-prefixed names in privilege order.
func (s RoleSet) Authorities() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.Authority()
	}
	return out
}

// Equal reports whether both sets hold the same roles.
func (s RoleSet) Equal(o RoleSet) bool {
	if s.Len() != o.Len() {
		return false
	}
	for r := range s.m {
		if !o.Has(r) {
			return false
		}
	}
	return true
}

// OrDefault returns s, or {USER} when s is empty. Every identity holds at least one role.
func (s RoleSet) OrDefault() RoleSet {
	if s.IsEmpty() {
		return NewRoleSet(RoleUser)
	}
	return s
}
