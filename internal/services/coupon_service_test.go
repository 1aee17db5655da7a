package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripveda/booking-backend/internal/models"
)

func newCouponTestService(t *testing.T, handler http.HandlerFunc) *CouponService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewCouponService(server.URL, logger)
}

func TestApplyCouponSuccess(t *testing.T) {
	service := newCouponTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coupons/apply", r.URL.Path)

		var req applyCouponRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "SAVE10", req.Code)
		assert.Equal(t, "trip-goa-01", req.TripID)
		assert.Equal(t, 2000.0, req.Amount)

		json.NewEncoder(w).Encode(models.CouponResult{
			Coupon:         models.Coupon{Code: "SAVE10", Type: models.DiscountTypePercentage, Value: 10},
			DiscountAmount: 200,
			FinalAmount:    1800,
		})
	})

	result, err := service.Apply(context.Background(), "SAVE10", "trip-goa-01", 2000)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", result.Coupon.Code)
	assert.Equal(t, 200.0, result.DiscountAmount)
}

func TestApplyCouponRejected(t *testing.T) {
	service := newCouponTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(applyCouponError{Error: "expired", Message: "this coupon expired on 2026-01-31"})
	})

	_, err := service.Apply(context.Background(), "OLD", "trip-goa-01", 2000)
	var couponErr *models.CouponError
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, "OLD", couponErr.Code)
	assert.Contains(t, couponErr.Message, "expired")
}

func TestApplyCouponFailsClosedOnTransportError(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	service := NewCouponService("http://127.0.0.1:1", logger)

	_, err := service.Apply(context.Background(), "SAVE10", "trip-goa-01", 2000)
	var networkErr *models.NetworkError
	require.ErrorAs(t, err, &networkErr)
}

func TestApplyCouponEmptyResponseRejected(t *testing.T) {
	service := newCouponTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := service.Apply(context.Background(), "SAVE10", "trip-goa-01", 2000)
	var couponErr *models.CouponError
	require.ErrorAs(t, err, &couponErr)
}
