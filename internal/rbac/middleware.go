package rbac

import (
	"log/slog"

	"dailyon/internal/response"
	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SubjectFunc reports who is attached to the request, or nil for nobody.
// The request gate owns identity; this package only reads it.
type SubjectFunc func(c *gin.Context) *Subject

// Enforce evaluates every request against p before any route handler runs.
// Denials are terminal: 400 for a non-canonical path, 401 when nobody is
// attached, 403 when the attached identity lacks the rule's role.
func Enforce(p *Policy, subject SubjectFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Canonical(c.Request.URL.Path) {
			decisionsTotal.WithLabelValues(decisionMalformedPath).Inc()
			logger.FromGin(c).Info("authorization denied",
				slog.String("reason", decisionMalformedPath),
			)
			response.Fail(c, response.CodeBadRequest, "Request path must be canonical")
			return
		}

		sub := subject(c)
		decision, rule := p.Evaluate(c.Request.Method, c.Request.URL.Path, sub)
		decisionsTotal.WithLabelValues(decision.String()).Inc()

		switch decision {
		case Allow:
			c.Next()
		case DenyUnauthenticated:
			logger.FromGin(c).Debug("authorization denied",
				slog.String("reason", decision.String()),
				slog.String("rule", rule.Pattern),
			)
			response.Fail(c, response.CodeUnauthorized, "")
		default:
			logger.FromGin(c).Info("authorization denied",
				slog.String("reason", decision.String()),
				slog.String("rule", rule.Pattern),
				slog.String("required_role", rule.Role.String()),
			)
			response.Fail(c, response.CodeForbidden, "")
		}
	}
}
