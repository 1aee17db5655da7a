package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
)

// respondError maps the service error taxonomy onto HTTP responses. Every
// handler funnels through here so a given error type always produces the
// same status and shape.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
		return
	}

	var couponErr *models.CouponError
	if errors.As(err, &couponErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "invalid_coupon",
			"code":    couponErr.Code,
			"message": couponErr.Message,
		})
		return
	}

	var verificationErr *models.PaymentVerificationError
	if errors.As(err, &verificationErr) {
		// The payment may have gone through even though the booking did
		// not confirm; the payment id is the user's support handle
		logger.WithFields(logrus.Fields{
			"order_id":   verificationErr.OrderID,
			"payment_id": verificationErr.PaymentID,
		}).Error("Payment verification failed")
		c.JSON(http.StatusConflict, gin.H{
			"error":      "payment_verification_failed",
			"order_id":   verificationErr.OrderID,
			"payment_id": verificationErr.PaymentID,
			"message":    verificationErr.Error(),
		})
		return
	}

	var networkErr *models.NetworkError
	if errors.As(err, &networkErr) {
		logger.WithError(err).Warn("Upstream call failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_unavailable",
			"message": "A required service is unreachable. Please try again.",
		})
		return
	}

	var maintenanceErr *models.MaintenanceError
	if errors.As(err, &maintenanceErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "maintenance",
			"message": maintenanceErr.Error(),
		})
		return
	}

	logger.WithError(err).Error("Unhandled error")
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
