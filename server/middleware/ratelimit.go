package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/stackskills/platform/auth/ratelimit"
	apperrors "github.com/stackskills/platform/errors"
)

// RateLimit throttles a route using the given limiter. The key function maps
// a request to the identifier the limiter tracks; credential endpoints use
// keys like "login:<email>:<ip>" so one caller cannot lock out another.
func RateLimit(limiter *ratelimit.Limiter, key func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check(key(c))
		if !result.Allowed {
			abortWith(c, apperrors.RateLimited(result.ResetAt))
			return
		}
		c.Next()
	}
}

// ByClientIP is a key function that throttles per client IP.
func ByClientIP(prefix string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}
