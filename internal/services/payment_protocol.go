package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
	"github.com/tripveda/booking-backend/internal/pricing"
)

// GatewayOrders is the slice of the gateway service the protocols depend on
type GatewayOrders interface {
	CreateOrder(ctx context.Context, amount float64, receipt string, notes map[string]string) (*models.GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// SubmissionContext carries everything a protocol needs to turn wizard state
// into a booking request
type SubmissionContext struct {
	UserID              uuid.UUID
	Trip                models.Trip
	Contact             models.ContactDetails
	Passengers          []models.Passenger
	SpecialRequirements string
	Breakdown           pricing.Breakdown
	Coupon              *models.Coupon
	TransactionID       string
}

// BuildRequest assembles the booking-service payload shared by both protocols
func (s *SubmissionContext) BuildRequest() *models.CreateBookingRequest {
	discounts := models.AppliedDiscounts{
		EarlyBird: s.Breakdown.EarlyBirdDiscount,
		Referral:  s.Breakdown.ReferralDiscount,
		Coupon:    s.Breakdown.CouponDiscount,
	}
	if s.Coupon != nil {
		discounts.CouponCode = s.Coupon.Code
	}

	return &models.CreateBookingRequest{
		TripID:              s.Trip.ID,
		Contact:             s.Contact,
		Passengers:          s.Passengers,
		PaymentType:         s.Breakdown.PaymentType,
		Amount:              s.Breakdown.DiscountedTotal,
		SeatLockAmount:      s.Breakdown.SeatLockToPay,
		RemainingAmount:     s.Breakdown.RemainingToPay,
		WalletUsedAmount:    s.Breakdown.WalletAmount,
		Discounts:           discounts,
		SpecialRequirements: s.SpecialRequirements,
	}
}

// SubmissionResult reports the outcome of a protocol's submit phase
type SubmissionResult struct {
	BookingID     string               `json:"booking_id"`
	Status        models.BookingStatus `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	// RequiresVerification means a client-side checkout must complete and
	// its result must come back through Verify before the booking confirms
	RequiresVerification bool                 `json:"requires_verification"`
	Order                *models.GatewayOrder `json:"order,omitempty"`
	KeyID                string               `json:"key_id,omitempty"`
}

// VerificationRequest pairs the checkout result with the booking it settles
type VerificationRequest struct {
	BookingID string `json:"booking_id"`
	models.CheckoutResult
}

// VerificationResult reports a confirmed booking
type VerificationResult struct {
	BookingID string               `json:"booking_id"`
	Status    models.BookingStatus `json:"status"`
}

// PaymentProtocol is the capability shared by the two structurally different
// payment backends. The protocol is selected once per submission, not
// branched on throughout the orchestrator.
type PaymentProtocol interface {
	Name() string
	Submit(ctx context.Context, sub *SubmissionContext) (*SubmissionResult, error)
	Verify(ctx context.Context, req *VerificationRequest) (*VerificationResult, error)
}

// freeBookingReference substitutes for a transaction reference when the net
// amount due is zero
func freeBookingReference() string {
	return "FREE-" + uuid.New().String()
}

// ManualConfirmation submits the whole booking in one call with a manually
// supplied transaction reference; an admin verifies the payment out of band.
type ManualConfirmation struct {
	bookings BookingAPI
	logger   *logrus.Logger
}

// NewManualConfirmation creates the manual-confirmation protocol
func NewManualConfirmation(bookings BookingAPI, logger *logrus.Logger) *ManualConfirmation {
	return &ManualConfirmation{bookings: bookings, logger: logger}
}

func (p *ManualConfirmation) Name() string { return "manual_confirmation" }

// Submit creates the booking in pending status with paymentStatus pending
func (p *ManualConfirmation) Submit(ctx context.Context, sub *SubmissionContext) (*SubmissionResult, error) {
	transactionID := strings.TrimSpace(sub.TransactionID)
	if sub.Breakdown.NetPayable <= 0 {
		transactionID = freeBookingReference()
	} else if transactionID == "" {
		return nil, &models.ValidationError{
			Field:   "transaction_id",
			Message: "a transaction reference is required when an amount is due",
		}
	}

	req := sub.BuildRequest()
	req.TransactionID = transactionID

	bookingID, err := p.bookings.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"booking_id":   bookingID,
		"trip_id":      sub.Trip.ID,
		"net_payable":  sub.Breakdown.NetPayable,
		"payment_type": sub.Breakdown.PaymentType,
	}).Info("Booking submitted for manual verification")

	return &SubmissionResult{
		BookingID:     bookingID,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}, nil
}

// Verify is not part of the manual protocol's lifecycle: an admin approves
// the transaction reference out of band
func (p *ManualConfirmation) Verify(ctx context.Context, req *VerificationRequest) (*VerificationResult, error) {
	return nil, fmt.Errorf("manual payments are verified out of band, nothing to verify for booking %s", req.BookingID)
}

// GatewayTwoPhase holds a provisional pre-booking, creates a gateway order
// for the amount due, and confirms only after server-side signature
// verification.
type GatewayTwoPhase struct {
	bookings BookingAPI
	gateway  GatewayOrders
	logger   *logrus.Logger
}

// NewGatewayTwoPhase creates the gateway protocol
func NewGatewayTwoPhase(bookings BookingAPI, gateway GatewayOrders, logger *logrus.Logger) *GatewayTwoPhase {
	return &GatewayTwoPhase{bookings: bookings, gateway: gateway, logger: logger}
}

func (p *GatewayTwoPhase) Name() string { return "gateway_two_phase" }

// Submit runs phases 1 and 2: pre-book the held booking, then create the
// gateway order for the exact post-wallet amount. The checkout itself runs
// client-side; Verify completes the flow. A zero net amount bypasses the
// gateway entirely.
func (p *GatewayTwoPhase) Submit(ctx context.Context, sub *SubmissionContext) (*SubmissionResult, error) {
	if sub.Breakdown.NetPayable <= 0 {
		req := sub.BuildRequest()
		req.TransactionID = freeBookingReference()
		bookingID, err := p.bookings.CreateBooking(ctx, req)
		if err != nil {
			return nil, err
		}
		return &SubmissionResult{
			BookingID:     bookingID,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}, nil
	}

	bookingID, err := p.bookings.Prebook(ctx, sub.BuildRequest())
	if err != nil {
		return nil, err
	}

	order, err := p.gateway.CreateOrder(ctx, sub.Breakdown.NetPayable, bookingID, map[string]string{
		"trip_id":    sub.Trip.ID,
		"booking_id": bookingID,
	})
	if err != nil {
		// Don't leave the hold dangling; the booking service's TTL is
		// only the backstop
		if cancelErr := p.bookings.CancelPrebook(ctx, bookingID); cancelErr != nil {
			p.logger.WithError(cancelErr).WithField("booking_id", bookingID).
				Error("Failed to cancel pre-booking after order failure")
		}
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"order_id":   order.ID,
		"amount":     order.Amount,
	}).Info("Gateway order created for pre-booking")

	return &SubmissionResult{
		BookingID:            bookingID,
		Status:               models.BookingStatusPending,
		PaymentStatus:        models.PaymentStatusPending,
		RequiresVerification: true,
		Order:                order,
		KeyID:                p.gateway.KeyID(),
	}, nil
}

// Verify checks the checkout signature locally, then confirms through the
// booking service. Any failure here is a genuine partial-failure state:
// money may have moved without the booking confirming.
func (p *GatewayTwoPhase) Verify(ctx context.Context, req *VerificationRequest) (*VerificationResult, error) {
	if !p.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		p.logger.WithFields(logrus.Fields{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
		}).Error("Checkout signature mismatch")
		return nil, &models.PaymentVerificationError{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Message:   "checkout signature does not match",
		}
	}

	bookingID, err := p.bookings.VerifyPayment(ctx, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		return nil, &models.PaymentVerificationError{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Message:   fmt.Sprintf("server-side verification failed: %v", err),
		}
	}
	if bookingID == "" {
		bookingID = req.BookingID
	}

	p.logger.WithField("booking_id", bookingID).Info("Gateway payment verified, booking confirmed")

	return &VerificationResult{
		BookingID: bookingID,
		Status:    models.BookingStatusConfirmed,
	}, nil
}

// CancelCheckout handles user-initiated checkout dismissal: a terminal
// cancellation, distinct from a payment failure. The provisional booking is
// released explicitly rather than left to rot until the server-side TTL.
func (p *GatewayTwoPhase) CancelCheckout(ctx context.Context, bookingID string) error {
	if err := p.bookings.CancelPrebook(ctx, bookingID); err != nil {
		p.logger.WithError(err).WithField("booking_id", bookingID).
			Warn("Failed to cancel pre-booking after checkout dismissal; server TTL will reclaim it")
		return err
	}
	p.logger.WithField("booking_id", bookingID).Info("Pre-booking cancelled after checkout dismissal")
	return nil
}
