// Package endpoint provides common HTTP endpoints shared by services.
package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the response body for the health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp"`
}

// RegisterHealth registers GET /health returning service liveness.
func RegisterHealth(r gin.IRoutes, service, version string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthStatus{
			Status:    "ok",
			Service:   service,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	})
}
