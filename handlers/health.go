// File: handlers/health.go
package handlers

import (
	"net/http"

	"flowdesk/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health with the latest dependency probes.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
