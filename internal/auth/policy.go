package auth

import (
	"net/http"
	"strings"
)

// Access is the requirement a rule places on the caller.
type Access int

const (
	// AccessAuthenticated admits any verified identity.
	AccessAuthenticated Access = iota
	// AccessPermitAll admits anonymous callers too.
	AccessPermitAll
	// AccessAuthority admits callers holding Rule.Authority.
	AccessAuthority
)

// Rule binds a method and path pattern to an access requirement.
// An empty Method matches every method. A pattern ending in "/**" matches
// the prefix itself and everything below it; other patterns match exactly.
type Rule struct {
	Method    string
	Pattern   string
	Access    Access
	Authority string
}

// Permit admits every caller on method+pattern.
func Permit(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessPermitAll}
}

// RequireAuthority admits callers holding authority on method+pattern.
func RequireAuthority(method, pattern, authority string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessAuthority, Authority: authority}
}

// Authenticated admits any verified identity on method+pattern.
func Authenticated(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: AccessAuthenticated}
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == r.Pattern
}

// Policy is an ordered rule table; the first matching rule decides.
// Requests no rule matches need an authenticated identity.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy evaluating rules in order.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: append([]Rule(nil), rules...)}
}

// DefaultPolicy is the route table of the catalog API.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Permit(http.MethodPost, "/auth/**"),
		RequireAuthority(http.MethodGet, "/api/categorias/**", PermRead),
		RequireAuthority(http.MethodPost, "/api/categorias/**", PermCreate),
		RequireAuthority(http.MethodPut, "/api/categorias/**", PermUpdate),
		RequireAuthority(http.MethodDelete, "/api/categorias/**", PermDelete),
	)
}

// Match returns the rule governing method+path.
func (p *Policy) Match(method, path string) Rule {
	for _, r := range p.rules {
		if r.matches(method, path) {
			return r
		}
	}
	return Rule{Method: method, Pattern: path, Access: AccessAuthenticated}
}

// Check decides a request. It returns nil when admitted, ErrUnauthenticated
// for an anonymous caller on a protected route, and ErrForbidden when the
// caller lacks the required authority.
func (p *Policy) Check(method, path string, principal Principal, authenticated bool) error {
	rule := p.Match(method, path)
	switch rule.Access {
	case AccessPermitAll:
		return nil
	case AccessAuthority:
		if !authenticated {
			return ErrUnauthenticated
		}
		if !principal.HasAuthority(rule.Authority) {
			return ErrForbidden
		}
		return nil
	default:
		if !authenticated {
			return ErrUnauthenticated
		}
		return nil
	}
}
