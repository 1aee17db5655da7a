package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/database"
	"github.com/tripveda/booking-backend/internal/middleware"
	"github.com/tripveda/booking-backend/internal/models"
)

// TemplateHandler manages a user's saved passenger templates
type TemplateHandler struct {
	templates *database.PassengerTemplateRepository
	logger    *logrus.Logger
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templates *database.PassengerTemplateRepository, logger *logrus.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// List returns the user's saved templates, newest first
// GET /passenger-templates
func (h *TemplateHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	templates, err := h.templates.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list passenger templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// Create saves a passenger as a reusable template
// POST /passenger-templates
func (h *TemplateHandler) Create(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		Name    string             `json:"name" binding:"required"`
		Phone   string             `json:"phone" binding:"required"`
		Age     int                `json:"age" binding:"required"`
		College models.CollegeInfo `json:"college"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	req.College.Normalize()
	tpl := &models.PassengerTemplate{
		UserID:  userCtx.UserID,
		Name:    req.Name,
		Phone:   req.Phone,
		Age:     req.Age,
		College: req.College,
	}
	if err := h.templates.Create(tpl); err != nil {
		h.logger.WithError(err).Error("Failed to save passenger template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save template"})
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// Delete removes one of the user's templates
// DELETE /passenger-templates/:template_id
func (h *TemplateHandler) Delete(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template_id"})
		return
	}

	if err := h.templates.Delete(userCtx.UserID, templateID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
