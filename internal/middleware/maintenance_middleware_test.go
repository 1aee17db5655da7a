package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticChecker bool

func (s staticChecker) MaintenanceEnabled() bool { return bool(s) }

func maintenanceRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaintenanceMiddleware(staticChecker(enabled)))
	router.GET("/bookings", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	router.POST("/bookings", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })
	return router
}

func TestMaintenanceBlocksMutations(t *testing.T) {
	router := maintenanceRouter(true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "MAINTENANCE_MODE")
}

func TestMaintenanceAllowsReads(t *testing.T) {
	router := maintenanceRouter(true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaintenanceOffPassesThrough(t *testing.T) {
	router := maintenanceRouter(false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bookings", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}
