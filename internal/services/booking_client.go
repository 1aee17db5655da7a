package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
)

// BookingAPI is the slice of the booking collaborator the payment
// orchestrator depends on
type BookingAPI interface {
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (string, error)
	Prebook(ctx context.Context, req *models.CreateBookingRequest) (string, error)
	CancelPrebook(ctx context.Context, bookingID string) error
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (string, error)
	CompleteRemainingPayment(ctx context.Context, bookingID, orderID, paymentID, signature string) error
	SubmitRemainingManual(ctx context.Context, bookingID, transactionID string, amount float64) error
}

// BookingClient talks to the booking service that owns trips, seats and the
// booking ledger
type BookingClient struct {
	baseURL string
	client  *http.Client
	logger  *logrus.Logger
}

// NewBookingClient creates a new booking service client
func NewBookingClient(baseURL string, logger *logrus.Logger) *BookingClient {
	return &BookingClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetTrip fetches the immutable trip snapshot for a booking session
func (c *BookingClient) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	if err := c.get(ctx, fmt.Sprintf("/trips/%s", tripID), &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetAvailability fetches the current seat counts for a trip
func (c *BookingClient) GetAvailability(ctx context.Context, tripID string) (*models.TripAvailability, error) {
	var availability models.TripAvailability
	if err := c.get(ctx, fmt.Sprintf("/trips/%s/availability", tripID), &availability); err != nil {
		return nil, err
	}
	if availability.TripID == "" {
		availability.TripID = tripID
	}
	return &availability, nil
}

// GetBookingContext fetches the user's referral eligibility and wallet balance
func (c *BookingClient) GetBookingContext(ctx context.Context, userID uuid.UUID) (*models.BookingContext, error) {
	var bookingCtx models.BookingContext
	if err := c.get(ctx, fmt.Sprintf("/users/%s/booking-context", userID), &bookingCtx); err != nil {
		return nil, err
	}
	return &bookingCtx, nil
}

// CreateBooking submits the full booking request in one call (manual and
// free-booking path). The resulting booking is pending until an admin
// verifies the payment out of band.
func (c *BookingClient) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (string, error) {
	var resp models.CreateBookingResponse
	if err := c.post(ctx, "/bookings", req, &resp); err != nil {
		return "", err
	}
	if resp.BookingID == "" {
		return "", &models.NetworkError{Op: "booking create", Err: fmt.Errorf("no booking id in response")}
	}
	c.logger.WithField("booking_id", resp.BookingID).Info("Booking created")
	return resp.BookingID, nil
}

// Prebook creates the provisional held booking the gateway order is tagged
// with (gateway path, phase 1)
func (c *BookingClient) Prebook(ctx context.Context, req *models.CreateBookingRequest) (string, error) {
	var resp models.CreateBookingResponse
	if err := c.post(ctx, "/bookings/prebook", req, &resp); err != nil {
		return "", err
	}
	if resp.BookingID == "" {
		return "", &models.NetworkError{Op: "prebook", Err: fmt.Errorf("no booking id in response")}
	}
	c.logger.WithField("booking_id", resp.BookingID).Info("Pre-booking hold created")
	return resp.BookingID, nil
}

// CancelPrebook releases a provisional booking whose checkout was abandoned
func (c *BookingClient) CancelPrebook(ctx context.Context, bookingID string) error {
	return c.post(ctx, fmt.Sprintf("/bookings/%s/cancel-prebook", bookingID), struct{}{}, nil)
}

// VerifyPayment submits the checkout result for server-side signature
// verification; only a verified signature confirms the booking
func (c *BookingClient) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (string, error) {
	payload := map[string]string{
		"order_id":   orderID,
		"payment_id": paymentID,
		"signature":  signature,
	}
	var resp models.CreateBookingResponse
	if err := c.post(ctx, "/payments/verify", payload, &resp); err != nil {
		return "", err
	}
	return resp.BookingID, nil
}

// CompleteRemainingPayment verifies a gateway payment against an existing
// seat-locked booking's remaining balance
func (c *BookingClient) CompleteRemainingPayment(ctx context.Context, bookingID, orderID, paymentID, signature string) error {
	payload := map[string]string{
		"booking_id": bookingID,
		"order_id":   orderID,
		"payment_id": paymentID,
		"signature":  signature,
	}
	return c.post(ctx, "/payments/complete-remaining-payment", payload, nil)
}

// SubmitRemainingManual posts a manual transaction reference against an
// existing booking's remaining balance
func (c *BookingClient) SubmitRemainingManual(ctx context.Context, bookingID, transactionID string, amount float64) error {
	payload := map[string]interface{}{
		"booking_id":     bookingID,
		"transaction_id": transactionID,
		"amount":         amount,
	}
	return c.post(ctx, fmt.Sprintf("/bookings/%s/remaining-payment", bookingID), payload, nil)
}

func (c *BookingClient) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, path, dest)
}

func (c *BookingClient) post(ctx context.Context, path string, payload, dest interface{}) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, dest)
}

func (c *BookingClient) do(req *http.Request, op string, dest interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"op":     op,
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("Booking service call failed")
		return &models.NetworkError{Op: op, Err: fmt.Errorf("booking service returned status %d", resp.StatusCode)}
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &models.NetworkError{Op: op, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}
