package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dailyon/internal/audit"
	"dailyon/internal/auth"
	"dailyon/internal/ledger"
	"dailyon/internal/notes"
	"dailyon/internal/planner"
	"dailyon/internal/response"
	"dailyon/internal/users"
	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: bind input, call the service, map errors to codes.
type Handlers struct {
	Auth    *auth.Service
	Users   *users.Service
	Audit   *audit.Service
	Notes   *notes.Service
	Planner *planner.Service
	Ledger  *ledger.Service
}

// identity returns the caller attached by the gate. Policy has already
// required one on every route that calls this, so absence is a wiring bug.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.FromGin(c)
	if !ok {
		response.Fail(c, response.CodeUnauthorized, "")
	}
	return id, ok
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Fail(c, response.CodeBadRequest, fmt.Sprintf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body into dst and reports validation failures by field.
func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		response.Fail(c, response.CodeValidation, "invalid fields: "+strings.Join(fields, ", "))
		return false
	}
	response.Fail(c, response.CodeBadRequest, "malformed JSON body")
	return false
}

// fail maps a service error onto the response code table. Unknown errors are
// logged and reported as INTERNAL_ERROR without detail.
func fail(c *gin.Context, err error) {
	var retry *auth.RetryAfterError
	switch {
	case errors.As(err, &retry):
		if retry.After > 0 {
			c.Header("Retry-After", strconv.Itoa(int((retry.After+time.Second-1)/time.Second)))
		}
		response.Fail(c, response.CodeTooManyRequests, "")
	case errors.Is(err, auth.ErrTooManyAttempts):
		response.Fail(c, response.CodeTooManyRequests, "")
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Fail(c, response.CodeLoginFailed, "")
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		response.Fail(c, response.CodeUnauthorized, "Invalid or expired refresh token")
	case errors.Is(err, auth.ErrLoginIDTaken), errors.Is(err, users.ErrLoginIDTaken):
		response.Fail(c, response.CodeConflict, "Login id is already registered")
	case errors.Is(err, notes.ErrConflict):
		response.Fail(c, response.CodeConflict, userMessage(err))
	case errors.Is(err, planner.ErrForbidden):
		response.Fail(c, response.CodeForbidden, "Only the event owner may change it")
	case errors.Is(err, auth.ErrInvalidSignup),
		errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, notes.ErrInvalidArgument),
		errors.Is(err, planner.ErrInvalidArgument),
		errors.Is(err, ledger.ErrInvalidArgument):
		response.Fail(c, response.CodeValidation, userMessage(err))
	case errors.Is(err, users.ErrNotFound),
		errors.Is(err, notes.ErrNotFound),
		errors.Is(err, planner.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound):
		response.Fail(c, response.CodeNotFound, "")
	default:
		logger.FromGin(c).Error("request failed", slog.String("error", err.Error()))
		response.Fail(c, response.CodeInternal, "")
	}
}

// userMessage drops the "pkg: sentinel:" prefix of a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}
