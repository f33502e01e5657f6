// Package middleware provides the Gin middleware stack: session
// authentication, role gating, per-client rate limiting, panic recovery,
// request IDs, CORS, and request logging.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/authctx"
	"github.com/stackskills/platform/auth/token"
	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/observability"
)

// Cookie names used when no Authorization header is present.
const (
	AuthCookie  = "auth-token"
	AdminCookie = "admin-token"
)

// Authenticate verifies the session token on every request and attaches the
// authenticated principal to the request context. The token is taken from
// the Authorization header first, then from the auth-token / admin-token
// cookies. Requests with a missing, invalid, expired, or revoked token are
// rejected before the handler runs. Verification outcomes are counted on
// metrics, which may be nil.
func Authenticate(tokens *token.Service, metrics *observability.AuthMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			abortWith(c, apperrors.Unauthorized("authentication required"))
			return
		}

		ctx := c.Request.Context()
		identity, err := tokens.VerifyNotRevoked(ctx, raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenRevoked):
				metrics.RecordTokenVerification(ctx, observability.TokenRevoked)
				abortWith(c, apperrors.TokenRevoked())
			case errors.Is(err, token.ErrInvalidToken):
				metrics.RecordTokenVerification(ctx, observability.TokenInvalid)
				abortWith(c, apperrors.InvalidToken())
			default:
				abortWith(c, apperrors.Internal(err))
			}
			return
		}

		metrics.RecordTokenVerification(ctx, observability.TokenValid)
		authctx.SetGin(c, identity.Principal)
		c.Next()
	}
}

// RequireRole gates a route group to principals holding one of the given
// roles. Must run after Authenticate.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := authctx.GetGin(c)
		if !ok {
			abortWith(c, apperrors.Unauthorized("authentication required"))
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abortWith(c, apperrors.Forbidden("insufficient permissions"))
	}
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the session cookies. The admin cookie is only consulted when the
// user cookie is absent.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(AuthCookie); err == nil && cookie != "" {
		return cookie
	}
	if cookie, err := c.Cookie(AdminCookie); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

func abortWith(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
