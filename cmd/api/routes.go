package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"dailyon/internal/auth"
	"dailyon/internal/httpapi"
	"dailyon/internal/rbac"
	"dailyon/internal/response"
	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthCheck reports the first failing dependency, keyed by name.
type healthCheck func(ctx context.Context) (string, error)

// newRouter builds the engine. Order matters: the gate attaches identity,
// then the policy decides, and only then do route handlers run.
func newRouter(log *slog.Logger, h httpapi.Handlers, resolver *auth.Resolver, health healthCheck) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(auth.Gate(resolver, auth.DefaultSkipPrefixes))
	r.Use(rbac.Enforce(rbac.DefaultPolicy(), auth.SubjectFromGin))

	actuator := r.Group("/actuator")
	{
		actuator.GET("/health", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if name, err := health(ctx); err != nil {
				logger.FromGin(c).Warn("health check failed", slog.String("dependency", name), slog.String("error", err.Error()))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "dependency": name})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "UP"})
		})
		actuator.GET("/prometheus", gin.WrapH(promhttp.Handler()))
	}

	h.Register(r)

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, response.CodeNotFound, "")
	})
	return r
}
