package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/middleware"
	"github.com/tripveda/booking-backend/internal/models"
	"github.com/tripveda/booking-backend/internal/services"
)

// WizardHandler exposes the four-step booking flow over HTTP
type WizardHandler struct {
	wizard *services.WizardService
	logger *logrus.Logger
}

// NewWizardHandler creates a new WizardHandler
func NewWizardHandler(wizard *services.WizardService, logger *logrus.Logger) *WizardHandler {
	return &WizardHandler{wizard: wizard, logger: logger}
}

// session resolves and authorizes the session id in the URL; a nil uuid
// return means the response has already been written
func (h *WizardHandler) session(c *gin.Context) (uuid.UUID, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
		return uuid.Nil, false
	}

	if err := h.wizard.VerifyOwner(sessionID, userCtx.UserID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found"})
		return uuid.Nil, false
	}
	return sessionID, true
}

// StartSession begins a booking session for a trip
// POST /booking/sessions
func (h *WizardHandler) StartSession(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req struct {
		TripID string `json:"trip_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.StartSession(c.Request.Context(), userCtx.UserID, req.TripID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current session snapshot
// GET /booking/sessions/:session_id
func (h *WizardHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.View(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateContact stores the contact step's fields
// PUT /booking/sessions/:session_id/contact
func (h *WizardHandler) UpdateContact(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var contact models.ContactDetails
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.UpdateContact(sessionID, contact)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdatePassengers stores the passenger list
// PUT /booking/sessions/:session_id/passengers
func (h *WizardHandler) UpdatePassengers(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Passengers          []models.Passenger `json:"passengers"`
		SpecialRequirements string             `json:"special_requirements"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.UpdatePassengers(sessionID, req.Passengers, req.SpecialRequirements)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Advance moves to the next step if the current step's gate passes
// POST /booking/sessions/:session_id/advance
func (h *WizardHandler) Advance(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.Advance(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Back moves to the previous step
// POST /booking/sessions/:session_id/back
func (h *WizardHandler) Back(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.Back(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GoTo jumps back to an earlier step directly
// POST /booking/sessions/:session_id/goto
func (h *WizardHandler) GoTo(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Step string `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.GoTo(sessionID, services.WizardStep(req.Step))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetPaymentType switches between full and seat-lock payment
// PUT /booking/sessions/:session_id/payment-type
func (h *WizardHandler) SetPaymentType(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		PaymentType models.PaymentType `json:"payment_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.SetPaymentType(sessionID, req.PaymentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetWallet toggles wallet usage against the amount due now
// PUT /booking/sessions/:session_id/wallet
func (h *WizardHandler) SetWallet(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Use bool `json:"use"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.SetWalletUsage(sessionID, req.Use)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ApplyCoupon validates and applies a coupon code
// POST /booking/sessions/:session_id/coupon
func (h *WizardHandler) ApplyCoupon(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	view, err := h.wizard.ApplyCoupon(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RemoveCoupon clears the applied coupon
// DELETE /booking/sessions/:session_id/coupon
func (h *WizardHandler) RemoveCoupon(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.RemoveCoupon(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Availability returns the latest polled seat snapshot
// GET /booking/sessions/:session_id/availability
func (h *WizardHandler) Availability(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	snapshot, err := h.wizard.Availability(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusOK, gin.H{"status": "pending"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ResumeDraft fills the session from the saved draft
// POST /booking/sessions/:session_id/draft/resume
func (h *WizardHandler) ResumeDraft(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.ResumeDraft(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DismissDraft deletes the saved draft and starts clean
// POST /booking/sessions/:session_id/draft/dismiss
func (h *WizardHandler) DismissDraft(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	view, err := h.wizard.DismissDraft(sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit commits the booking from the confirmation step
// POST /booking/sessions/:session_id/submit
func (h *WizardHandler) Submit(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.wizard.Submit(c.Request.Context(), sessionID, req.TransactionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Abandon ends the session, keeping the draft for later
// DELETE /booking/sessions/:session_id
func (h *WizardHandler) Abandon(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}
	h.wizard.Abandon(sessionID)
	c.JSON(http.StatusOK, gin.H{"status": "abandoned"})
}
