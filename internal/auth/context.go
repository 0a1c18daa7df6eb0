package auth

import (
	"context"

	"github.com/fardapack/crm-api/internal/domain"
)

// Caller holds the resolved identity of the authenticated account
type Caller struct {
	AccountID       uint
	Username        string
	Role            domain.Role
	LinkedContactID *uint
}

type contextKey string

const callerContextKey contextKey = "caller"

// WithCaller adds the resolved caller to the context
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// FromContext extracts the caller from the context
func FromContext(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	return caller, ok
}

// MustFromContext extracts the caller or panics. Only call behind the
// Authenticate middleware.
func MustFromContext(ctx context.Context) *Caller {
	caller, ok := FromContext(ctx)
	if !ok {
		panic("caller not found in context")
	}
	return caller
}

// IsAdmin reports whether the caller holds the admin role
func (c *Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}
