package auth

import (
	"context"

	"dailyon/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Identity is the resolved caller of one request. It is built from the user
// store, never from token contents alone.
type Identity struct {
	UserID      int64
	LoginID     string
	DisplayName string
	Roles       rbac.RoleSet
	Enabled     bool
}

func (i Identity) Subject() *rbac.Subject {
	return &rbac.Subject{Roles: i.Roles}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// FromGin returns the identity attached by Gate, if any.
func FromGin(c *gin.Context) (Identity, bool) {
	return FromContext(c.Request.Context())
}

// SubjectFromGin adapts the attached identity for rbac.Enforce.
func SubjectFromGin(c *gin.Context) *rbac.Subject {
	id, ok := FromGin(c)
	if !ok {
		return nil
	}
	return id.Subject()
}
