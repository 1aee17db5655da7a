package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/config"
	"github.com/tripveda/booking-backend/internal/models"
)

// GatewayService integrates the real-time payment gateway: order creation
// over its REST API and HMAC-SHA256 signature verification for checkout
// results and webhooks. The key secret never leaves the server.
type GatewayService struct {
	config config.GatewayConfig
	client *http.Client
	logger *logrus.Logger
}

// NewGatewayService creates a new payment gateway service
func NewGatewayService(cfg config.GatewayConfig, logger *logrus.Logger) *GatewayService {
	return &GatewayService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// IsConfigured returns true if gateway credentials are present
func (s *GatewayService) IsConfigured() bool {
	return s.config.KeyID != "" && s.config.KeySecret != ""
}

// KeyID returns the public key id handed to the client-side checkout
func (s *GatewayService) KeyID() string {
	return s.config.KeyID
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates a gateway order for the exact rupee amount due now,
// tagged with the trip and provisional booking ids. The amount is converted
// to the smallest currency unit as the gateway requires.
func (s *GatewayService) CreateOrder(ctx context.Context, amount float64, receipt string, notes map[string]string) (*models.GatewayOrder, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("payment gateway not configured: missing merchant credentials")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %.2f", amount)
	}

	request := createOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: s.config.Currency,
		Receipt:  receipt,
		Notes:    notes,
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/v1/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.config.KeyID, s.config.KeySecret)

	s.logger.WithFields(logrus.Fields{
		"amount":   request.Amount,
		"currency": request.Currency,
		"receipt":  receipt,
	}).Info("Creating gateway order")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{Op: "gateway order create", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Op: "gateway order create", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var gatewayErr gatewayErrorResponse
		description := fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		if json.Unmarshal(body, &gatewayErr) == nil && gatewayErr.Error.Description != "" {
			description = gatewayErr.Error.Description
		}
		s.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"error":  description,
		}).Error("Gateway order creation failed")
		return nil, &models.NetworkError{Op: "gateway order create", Err: fmt.Errorf("%s", description)}
	}

	var order models.GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, &models.NetworkError{Op: "gateway order create", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if order.ID == "" {
		return nil, &models.NetworkError{Op: "gateway order create", Err: fmt.Errorf("no order id in response")}
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
	}).Info("Gateway order created")

	return &order, nil
}

// VerifySignature checks a checkout result signature: HMAC-SHA256 of
// "orderID|paymentID" keyed with the merchant secret. A mismatch after a
// real money movement is a support case, never a silent retry.
func (s *GatewayService) VerifySignature(orderID, paymentID, signature string) bool {
	expected := s.sign(orderID + "|" + paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks a webhook body against the gateway's
// signature header using the dedicated webhook secret
func (s *GatewayService) VerifyWebhookSignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *GatewayService) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(s.config.KeySecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
