package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerTraceID = "X-Trace-Id"

	ginLoggerKey  = "logger"
	ginTraceIDKey = "trace_id"
)

// Middleware returns a Gin middleware that assigns a trace id, attaches a
// request-scoped logger and logs a request summary.
func Middleware(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		tid := c.GetHeader(headerTraceID)
		if tid == "" || len(tid) > 128 {
			tid = uuid.NewString()
		}
		c.Writer.Header().Set(headerTraceID, tid)
		c.Set(ginTraceIDKey, tid)

		reqLogger := l.With("trace_id", tid)
		c.Set(ginLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(With(c.Request.Context(), reqLogger))

		c.Next()

		dur := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", float64(dur.Milliseconds()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
			reqLogger.Error("request", attrs...)
			return
		}
		reqLogger.Info("request", attrs...)
	}
}

// FromGin pulls the request-scoped logger from Gin context.
func FromGin(c *gin.Context) *slog.Logger {
	if v, ok := c.Get(ginLoggerKey); ok {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// TraceID returns the trace id assigned by Middleware, or "" outside it.
func TraceID(c *gin.Context) string {
	return c.GetString(ginTraceIDKey)
}

// Attach replaces the request-scoped logger, e.g. once the caller is known.
func Attach(c *gin.Context, l *slog.Logger) {
	c.Set(ginLoggerKey, l)
	c.Request = c.Request.WithContext(With(c.Request.Context(), l))
}
