package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
)

// CouponService applies coupon codes through the coupon collaborator.
// Every failure is fail-closed: the caller keeps its prior discount state.
type CouponService struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewCouponService creates a new coupon service client
func NewCouponService(baseURL string, logger *logrus.Logger) *CouponService {
	return &CouponService{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type applyCouponRequest struct {
	Code   string  `json:"code"`
	TripID string  `json:"trip_id"`
	Amount float64 `json:"amount"`
}

type applyCouponError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Apply validates a code against the current amount and returns the coupon
// with its computed discount. A transport failure yields a NetworkError, a
// rejected code a CouponError; in both cases no discount is applied.
func (s *CouponService) Apply(ctx context.Context, code, tripID string, amount float64) (*models.CouponResult, error) {
	jsonBody, err := json.Marshal(applyCouponRequest{Code: code, TripID: tripID, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal coupon request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/coupons/apply", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build coupon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).WithField("code", code).Warn("Coupon service unreachable, failing closed")
		return nil, &models.NetworkError{Op: "coupon apply", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Op: "coupon apply", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var couponErr applyCouponError
		message := fmt.Sprintf("coupon service returned status %d", resp.StatusCode)
		if json.Unmarshal(body, &couponErr) == nil && couponErr.Message != "" {
			message = couponErr.Message
		}
		s.logger.WithFields(logrus.Fields{
			"code":   code,
			"status": resp.StatusCode,
		}).Info("Coupon rejected")
		return nil, &models.CouponError{Code: code, Message: message}
	}

	var result models.CouponResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &models.NetworkError{Op: "coupon apply", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if result.Coupon.Code == "" {
		return nil, &models.CouponError{Code: code, Message: "coupon service returned an empty coupon"}
	}

	s.logger.WithFields(logrus.Fields{
		"code":            result.Coupon.Code,
		"discount_amount": result.DiscountAmount,
	}).Info("Coupon applied")

	return &result, nil
}
