// Package response defines the JSON envelope and the stable error codes every
// endpoint answers with.
package response

import (
	"net/http"

	"dailyon/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Code is a machine-readable failure code. Keep values stable; clients switch on them.
type Code string

const (
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeLoginFailed     Code = "LOGIN_FAILED"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type codeInfo struct {
	status  int
	message string
}

var codes = map[Code]codeInfo{
	CodeBadRequest:      {http.StatusBadRequest, "Invalid request"},
	CodeValidation:      {http.StatusBadRequest, "Validation failed"},
	CodeUnauthorized:    {http.StatusUnauthorized, "Authentication required"},
	CodeForbidden:       {http.StatusForbidden, "Access denied"},
	CodeNotFound:        {http.StatusNotFound, "Resource not found"},
	CodeConflict:        {http.StatusConflict, "Conflict"},
	CodeLoginFailed:     {http.StatusUnauthorized, "Invalid login id or password"},
	CodeTooManyRequests: {http.StatusTooManyRequests, "Too many attempts, try again later"},
	CodeInternal:        {http.StatusInternalServerError, "Unexpected server error"},
}

// Status returns the HTTP status for c. Unknown codes map to 500.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the human-readable message used when none is given.
func (c Code) DefaultMessage() string {
	if info, ok := codes[c]; ok {
		return info.message
	}
	return codes[CodeInternal].message
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
	TraceID string     `json:"traceId,omitempty"`
}

type ErrorBody struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, TraceID: traceID(c)})
}

// Created writes a 201 success envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, TraceID: traceID(c)})
}

// Fail aborts the request with the code's status and an error envelope.
// An empty message falls back to the code's default.
func Fail(c *gin.Context, code Code, message string) {
	if message == "" {
		message = code.DefaultMessage()
	}
	status := code.Status()
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Status: status},
		TraceID: traceID(c),
	})
}

func traceID(c *gin.Context) string {
	return logger.TraceID(c)
}
