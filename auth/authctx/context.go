// Package authctx propagates the authenticated Principal through
// context.Context and gin request contexts.
//
// The middleware stores the principal after token validation; handlers
// retrieve it without re-parsing the token:
//
//	p, ok := authctx.Get(c.Request.Context())
//	p := authctx.MustGet(c.Request.Context()) // panics if missing
package authctx

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stackskills/platform/auth"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var principalKey = contextKey{}

// ErrNoPrincipal is returned when no principal is stored in the context.
var ErrNoPrincipal = errors.New("authctx: no principal in context")

// Set stores the principal in the context.
func Set(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Get retrieves the principal from the context.
func Get(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(auth.Principal)
	return p, ok
}

// MustGet retrieves the principal or panics. Use only in handlers that are
// guaranteed to run behind the authentication middleware.
func MustGet(ctx context.Context) auth.Principal {
	p, ok := Get(ctx)
	if !ok {
		panic("authctx: principal not found in context")
	}
	return p
}

// GetOrError retrieves the principal, returning ErrNoPrincipal when absent.
func GetOrError(ctx context.Context) (auth.Principal, error) {
	p, ok := Get(ctx)
	if !ok {
		return auth.Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// SetGin stores the principal on the gin request context so both
// gin.Context lookups and context.Context lookups find it.
func SetGin(c *gin.Context, p auth.Principal) {
	c.Request = c.Request.WithContext(Set(c.Request.Context(), p))
}

// GetGin retrieves the principal from a gin request.
func GetGin(c *gin.Context) (auth.Principal, bool) {
	return Get(c.Request.Context())
}
