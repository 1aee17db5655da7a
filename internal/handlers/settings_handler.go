package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/services"
)

// SettingsHandler exposes the public payment settings snapshot
type SettingsHandler struct {
	settings *services.SettingsService
	logger   *logrus.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *services.SettingsService, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// GetPaymentSettings returns the active payment mode and its display fields
// GET /payment-settings
func (h *SettingsHandler) GetPaymentSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Snapshot())
}
