package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/utils"
)

// DenialRecorder receives every authorization refusal, e.g. to write the activity log
type DenialRecorder interface {
	RecordAccessDenied(ctx context.Context, identity models.Identity, method, path, reason string)
}

// AccessRule restricts the matching paths to a set of roles.
// An empty Methods list applies the rule to every method.
type AccessRule struct {
	Methods  []string
	Patterns []string
	Roles    []models.UserRole
}

type compiledRule struct {
	AccessRule
	matchers []glob.Glob
}

// Decision is the outcome of evaluating a request against the AccessPolicy
type Decision int

const (
	// DecisionPublic means the path is on the public allow-list
	DecisionPublic Decision = iota
	// DecisionAllowed means an identity is present and every matching rule admits it
	DecisionAllowed
	// DecisionUnauthenticated means the path needs an identity and none is present
	DecisionUnauthenticated
	// DecisionForbidden means the identity's role is not admitted by the first matching rule
	DecisionForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionPublic:
		return "public"
	case DecisionAllowed:
		return "allowed"
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// AccessPolicy is the static path-level policy: a public allow-list, then
// role-gated rules evaluated in declaration order, first match wins.
// Patterns are ant-style: '*' matches one path segment, '**' any number of segments.
type AccessPolicy struct {
	public   []glob.Glob
	rules    []compiledRule
	recorder DenialRecorder
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAccessPolicy compiles the public patterns and rules. recorder and metrics may be nil.
func NewAccessPolicy(public []string, rules []AccessRule, recorder DenialRecorder, metrics *observability.Metrics, logger *zap.Logger) (*AccessPolicy, error) {
	p := &AccessPolicy{
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
	}

	for _, pattern := range public {
		matchers, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.public = append(p.public, matchers...)
	}

	for _, rule := range rules {
		if len(rule.Roles) == 0 {
			return nil, fmt.Errorf("access rule for %v has no roles", rule.Patterns)
		}
		compiled := compiledRule{AccessRule: rule}
		for _, pattern := range rule.Patterns {
			matchers, err := compilePattern(pattern)
			if err != nil {
				return nil, err
			}
			compiled.matchers = append(compiled.matchers, matchers...)
		}
		p.rules = append(p.rules, compiled)
	}

	return p, nil
}

// compilePattern turns an ant-style pattern into globs. A trailing "/**" also
// matches the bare prefix, so "/api/students/**" covers "/api/students".
func compilePattern(pattern string) ([]glob.Glob, error) {
	patterns := []string{pattern}
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok && prefix != "" {
		patterns = append(patterns, prefix)
	}

	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid path pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}

func matchAny(matchers []glob.Glob, path string) bool {
	for _, m := range matchers {
		if m.Match(path) {
			return true
		}
	}
	return false
}

func (r compiledRule) appliesTo(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func roleIn(role models.UserRole, roles []models.UserRole) bool {
	for _, r := range roles {
		if strings.EqualFold(string(r), string(role)) {
			return true
		}
	}
	return false
}

// IsPublic reports whether the path bypasses authentication
func (p *AccessPolicy) IsPublic(path string) bool {
	return matchAny(p.public, normalizePath(path))
}

// Decide evaluates the request. The matched rule is returned for forbidden decisions.
func (p *AccessPolicy) Decide(r *http.Request) (Decision, *AccessRule) {
	path := normalizePath(r.URL.Path)
	if matchAny(p.public, path) {
		return DecisionPublic, nil
	}

	identity := CurrentIdentity(r.Context())
	if identity == nil {
		return DecisionUnauthenticated, nil
	}

	for i := range p.rules {
		rule := &p.rules[i]
		if !rule.appliesTo(r.Method) || !matchAny(rule.matchers, path) {
			continue
		}
		if roleIn(identity.Role, rule.Roles) {
			return DecisionAllowed, nil
		}
		return DecisionForbidden, &rule.AccessRule
	}

	return DecisionAllowed, nil
}

// Handler enforces the policy, writing 401 or 403 for refused requests.
// It must run after the Authenticator.
func (p *AccessPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		decision, rule := p.Decide(r)

		switch decision {
		case DecisionUnauthenticated:
			p.logger.Debug("authentication required",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			p.metrics.RecordDenial("authentication")
			_ = utils.WriteAuthenticationFailure(w, r)
			return

		case DecisionForbidden:
			identity := CurrentIdentity(ctx)
			message := fmt.Sprintf("%s. Required roles: %s", utils.AccessDeniedMessage, formatRoles(rule.Roles))
			p.logger.Warn("access denied by path policy",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_id", identity.UserID.String()),
				zap.String("role", string(identity.Role)))
			p.metrics.RecordDenial("path")
			if p.recorder != nil {
				p.recorder.RecordAccessDenied(ctx, *identity, r.Method, r.URL.Path, message)
			}
			_ = utils.WriteAuthorizationFailure(w, r, utils.AccessDeniedMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func formatRoles(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
