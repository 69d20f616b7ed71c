package auth

import (
	"log/slog"
	"strings"

	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// DefaultSkipPrefixes are paths the gate never tries to resolve.
var DefaultSkipPrefixes = []string{
	"/swagger-ui",
	"/v3/api-docs",
	"/actuator",
	"/api/auth/public",
	"/error",
}

// Gate resolves the bearer token, if any, and attaches the identity to the
// request context. It never rejects: deciding whether a caller may proceed
// belongs to rbac.Enforce, which runs after it.
func Gate(r *Resolver, skipPrefixes []string) gin.HandlerFunc {
	skip := append([]string(nil), skipPrefixes...)

	return func(c *gin.Context) {
		if hasPrefix(c.Request.URL.Path, skip) {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader(authorizationHeader))
		if !ok {
			c.Next()
			return
		}

		id, ok := r.Resolve(c.Request.Context(), token)
		if ok {
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
			logger.Attach(c, logger.FromGin(c).With(slog.Int64("user_id", id.UserID)))
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return tok, tok != ""
}

// hasPrefix matches whole path segments: "/error" covers "/error/x" but not "/errors".
func hasPrefix(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if p == pre || strings.HasPrefix(p, strings.TrimSuffix(pre, "/")+"/") {
			return true
		}
	}
	return false
}
