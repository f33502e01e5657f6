package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stackskills/platform/logger"
)

// RequestLogger logs each request with method, path, status, duration, and
// request ID.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			logger.FieldDuration, time.Since(start).String(),
			logger.FieldRequestID, GetRequestID(c),
			"client_ip", c.ClientIP(),
		)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			logger.Error("Request failed", fields)
		case status >= 400:
			logger.Warn("Request rejected", fields)
		default:
			logger.Info("Request completed", fields)
		}
	}
}
