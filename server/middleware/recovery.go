package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/logger"
)

// Recovery recovers from panics in handlers, logs the stack, and returns a
// generic 500 so internals never leak to the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered", logger.Fields(
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"stack", string(debug.Stack()),
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apperrors.New(apperrors.ErrCodeInternal, "internal server error", http.StatusInternalServerError).ToResponse())
			}
		}()
		c.Next()
	}
}
