package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/middleware"
	"github.com/tripveda/booking-backend/internal/models"
	"github.com/tripveda/booking-backend/internal/services"
)

// PaymentHandler exposes gateway verification, checkout cancellation and
// remaining-balance payments
type PaymentHandler struct {
	orchestrator *services.PaymentOrchestrator
	wizard       *services.WizardService
	webhooks     WebhookVerifier
	logger       *logrus.Logger
}

// WebhookVerifier checks the gateway's webhook signature header
type WebhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(orchestrator *services.PaymentOrchestrator, wizard *services.WizardService, webhooks WebhookVerifier, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		orchestrator: orchestrator,
		wizard:       wizard,
		webhooks:     webhooks,
		logger:       logger,
	}
}

type verifyPaymentRequest struct {
	SessionID string `json:"session_id"`
	BookingID string `json:"booking_id" binding:"required"`
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyPayment completes the two-phase gateway flow after checkout
// POST /payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	// A supplied session id must belong to the caller before anything can
	// be finalized on its behalf
	sessionID := uuid.Nil
	if req.SessionID != "" {
		userCtx, exists := middleware.GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		if err := h.wizard.VerifyOwner(parsed, userCtx.UserID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found"})
			return
		}
		sessionID = parsed
	}

	result, err := h.orchestrator.VerifyGatewayPayment(c.Request.Context(), &services.VerificationRequest{
		BookingID: req.BookingID,
		CheckoutResult: models.CheckoutResult{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		},
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// The booking is committed; the session and draft are done
	if sessionID != uuid.Nil {
		h.wizard.Finalize(sessionID)
	}

	c.JSON(http.StatusOK, result)
}

// CancelCheckout releases the pre-booking after a dismissed checkout
// POST /payments/checkout-cancelled
func (h *PaymentHandler) CancelCheckout(c *gin.Context) {
	var req struct {
		BookingID string `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if err := h.orchestrator.CancelCheckout(c.Request.Context(), req.BookingID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// StartRemainingPayment opens a gateway order for a seat-lock balance
// POST /bookings/:booking_id/remaining/order
func (h *PaymentHandler) StartRemainingPayment(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.orchestrator.StartRemainingPayment(c.Request.Context(), bookingID, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// VerifyRemainingPayment settles the balance after its checkout
// POST /payments/remaining/verify
func (h *PaymentHandler) VerifyRemainingPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.orchestrator.VerifyRemainingPayment(c.Request.Context(), &services.VerificationRequest{
		BookingID: req.BookingID,
		CheckoutResult: models.CheckoutResult{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		},
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SubmitRemainingManual records a manual transaction reference for a balance
// POST /bookings/:booking_id/remaining/manual
func (h *PaymentHandler) SubmitRemainingManual(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	bookingID := c.Param("booking_id")

	var req struct {
		TransactionID string  `json:"transaction_id" binding:"required"`
		Amount        float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if err := h.orchestrator.SubmitRemainingManual(c.Request.Context(), bookingID, req.TransactionID, req.Amount); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userCtx.UserID,
	}).Info("Remaining balance reference received")

	c.JSON(http.StatusAccepted, gin.H{"status": "pending_verification"})
}

// GatewayWebhook receives payment events pushed by the gateway. Events are
// logged for reconciliation; the checkout callback remains the confirmation
// path.
// POST /webhooks/gateway
func (h *PaymentHandler) GatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !h.webhooks.VerifyWebhookSignature(body, signature) {
		h.logger.Warn("Webhook with bad signature dropped")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	h.logger.WithField("bytes", len(body)).Info("Gateway webhook accepted")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
