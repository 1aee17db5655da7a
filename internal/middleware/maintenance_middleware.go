package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaintenanceChecker reports whether booking mutations are currently blocked
type MaintenanceChecker interface {
	MaintenanceEnabled() bool
}

// MaintenanceMiddleware rejects mutating requests while maintenance mode is
// on. Reads still work so users can see their existing bookings.
func MaintenanceMiddleware(checker MaintenanceChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		if checker.MaintenanceEnabled() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "maintenance",
				"message": "Bookings are paused for maintenance. Please try again shortly.",
				"code":    "MAINTENANCE_MODE",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
