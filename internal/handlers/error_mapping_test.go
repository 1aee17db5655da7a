package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/tripveda/booking-backend/internal/models"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			"validation error",
			&models.ValidationError{Field: "phone", Message: "invalid"},
			http.StatusBadRequest,
			"validation_error",
		},
		{
			"coupon error",
			&models.CouponError{Code: "OLD", Message: "expired"},
			http.StatusUnprocessableEntity,
			"invalid_coupon",
		},
		{
			"payment verification error",
			&models.PaymentVerificationError{OrderID: "order_1", PaymentID: "pay_1", Message: "signature mismatch"},
			http.StatusConflict,
			"payment_verification_failed",
		},
		{
			"network error",
			&models.NetworkError{Op: "coupon apply", Err: errors.New("timeout")},
			http.StatusBadGateway,
			"upstream_unavailable",
		},
		{
			"maintenance error",
			&models.MaintenanceError{},
			http.StatusServiceUnavailable,
			"maintenance",
		},
		{
			"unknown error",
			errors.New("boom"),
			http.StatusBadRequest,
			"boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, logger, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRespondErrorUnwrapsWrappedTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := &models.NetworkError{
		Op:  "booking create",
		Err: errors.New("connection refused"),
	}
	respondError(c, logger, wrapped)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
