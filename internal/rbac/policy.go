package rbac

import (
	"net/http"
	"path"
	"strings"
)

// Access is the requirement a rule places on the caller.
type Access int

const (
	AccessPublic Access = iota
	AccessAuthenticated
	AccessRole
)

// Decision is the outcome of evaluating a request against a Policy.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Subject is what the policy needs to know about an authenticated caller.
// A nil *Subject means nobody is attached to the request.
type Subject struct {
	Roles RoleSet
}

// Rule maps a path pattern (and optionally a method) to an Access requirement.
//
// Patterns ending in "/**" match the base path and everything below it;
// "/**" alone matches every path. Other patterns match exactly.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    Role
}

func Public(pattern string) Rule { return Rule{Pattern: pattern, Access: AccessPublic} }

func Authenticated(pattern string) Rule { return Rule{Pattern: pattern, Access: AccessAuthenticated} }

func RequireRole(pattern string, role Role) Rule {
	return Rule{Pattern: pattern, Access: AccessRole, Role: role}
}

// ForMethod restricts the rule to a single HTTP method.
func (r Rule) ForMethod(method string) Rule {
	r.Method = strings.ToUpper(method)
	return r
}

func (r Rule) matches(method, p string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if base, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		if base == "" {
			return true
		}
		return p == base || strings.HasPrefix(p, base+"/")
	}
	return p == r.Pattern
}

// Policy is an ordered rule table. First match wins; a request matching no
// rule is treated as requiring authentication.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Policy{rules: out}
}

// DefaultPolicy is the route table for the API.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Public("/swagger-ui/**"),
		Public("/v3/api-docs/**"),
		Public("/actuator/**"),
		Public("/api/auth/public/**"),
		Public("/api/planner/public/**"),
		Public("/error"),

		Public("/**").ForMethod(http.MethodOptions),

		RequireRole("/api/notes/**", RoleUser),
		RequireRole("/api/planner/**", RoleUser),
		RequireRole("/api/ledger/**", RoleUser),

		RequireRole("/api/admin/**", RoleAdmin),

		Authenticated("/**"),
	)
}

// Rules returns a copy of the rule table in evaluation order.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Evaluate returns the decision for a request and the rule that produced it.
func (p *Policy) Evaluate(method, rawPath string, sub *Subject) (Decision, Rule) {
	method = strings.ToUpper(method)
	clean := cleanPath(rawPath)

	for _, r := range p.rules {
		if !r.matches(method, clean) {
			continue
		}
		return decide(r, sub), r
	}
	fallback := Authenticated("/**")
	return decide(fallback, sub), fallback
}

func decide(r Rule, sub *Subject) Decision {
	switch r.Access {
	case AccessPublic:
		return Allow
	case AccessAuthenticated:
		if sub == nil {
			return DenyUnauthenticated
		}
		return Allow
	case AccessRole:
		if sub == nil {
			return DenyUnauthenticated
		}
		if !sub.Roles.Has(r.Role) {
			return DenyForbidden
		}
		return Allow
	default:
		// unknown access kinds fail closed
		if sub == nil {
			return DenyUnauthenticated
		}
		return DenyForbidden
	}
}

// Canonical reports whether p is already in the form the policy matches on,
// allowing one trailing slash. The router dispatches on the raw path, so a
// request whose raw path differs from its cleaned form could be routed to a
// handler that a different rule was evaluated for.
func Canonical(p string) bool {
	if p == "/" {
		return true
	}
	return cleanPath(p) == strings.TrimSuffix(p, "/")
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
