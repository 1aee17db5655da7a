package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
)

// PaymentOrchestrator selects the active payment protocol from the payment
// settings and drives booking submission, gateway verification, and
// remaining-balance payments for seat-lock bookings.
type PaymentOrchestrator struct {
	bookings BookingAPI
	gateway  GatewayOrders
	settings *SettingsService
	manual   *ManualConfirmation
	twoPhase *GatewayTwoPhase
	logger   *logrus.Logger
}

// NewPaymentOrchestrator creates the orchestrator and both protocol
// implementations behind it
func NewPaymentOrchestrator(bookings BookingAPI, gateway GatewayOrders, settings *SettingsService, logger *logrus.Logger) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		bookings: bookings,
		gateway:  gateway,
		settings: settings,
		manual:   NewManualConfirmation(bookings, logger),
		twoPhase: NewGatewayTwoPhase(bookings, gateway, logger),
		logger:   logger,
	}
}

// Protocol resolves the protocol for the configured payment mode. The choice
// is made once per submission; callers never branch on the mode themselves.
func (o *PaymentOrchestrator) Protocol() PaymentProtocol {
	if o.settings.Mode() == models.PaymentModeGateway {
		return o.twoPhase
	}
	return o.manual
}

// Submit runs the active protocol's submit phase
func (o *PaymentOrchestrator) Submit(ctx context.Context, sub *SubmissionContext) (*SubmissionResult, error) {
	protocol := o.Protocol()
	o.logger.WithFields(logrus.Fields{
		"protocol": protocol.Name(),
		"trip_id":  sub.Trip.ID,
	}).Info("Submitting booking")
	return protocol.Submit(ctx, sub)
}

// VerifyGatewayPayment completes the two-phase flow after a successful
// client-side checkout
func (o *PaymentOrchestrator) VerifyGatewayPayment(ctx context.Context, req *VerificationRequest) (*VerificationResult, error) {
	return o.twoPhase.Verify(ctx, req)
}

// CancelCheckout releases a provisional booking when the user dismisses the
// checkout without paying
func (o *PaymentOrchestrator) CancelCheckout(ctx context.Context, bookingID string) error {
	return o.twoPhase.CancelCheckout(ctx, bookingID)
}

// StartRemainingPayment opens a gateway order for the outstanding balance of
// a seat-lock booking. Only callable when a balance is actually outstanding.
func (o *PaymentOrchestrator) StartRemainingPayment(ctx context.Context, bookingID string, remaining float64) (*SubmissionResult, error) {
	if remaining <= 0 {
		return nil, &models.ValidationError{
			Field:   "remaining_amount",
			Message: "no outstanding balance on this booking",
		}
	}

	order, err := o.gateway.CreateOrder(ctx, remaining, bookingID, map[string]string{
		"booking_id": bookingID,
		"purpose":    "remaining_balance",
	})
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"order_id":   order.ID,
		"amount":     order.Amount,
	}).Info("Gateway order created for remaining balance")

	return &SubmissionResult{
		BookingID:            bookingID,
		Status:               models.BookingStatusConfirmed,
		PaymentStatus:        models.PaymentStatusPending,
		RequiresVerification: true,
		Order:                order,
		KeyID:                o.gateway.KeyID(),
	}, nil
}

// VerifyRemainingPayment verifies the checkout result for a remaining-balance
// order and marks the balance settled
func (o *PaymentOrchestrator) VerifyRemainingPayment(ctx context.Context, req *VerificationRequest) (*VerificationResult, error) {
	if !o.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, &models.PaymentVerificationError{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Message:   "checkout signature does not match",
		}
	}

	if err := o.bookings.CompleteRemainingPayment(ctx, req.BookingID, req.OrderID, req.PaymentID, req.Signature); err != nil {
		return nil, &models.PaymentVerificationError{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Message:   "failed to settle remaining balance: " + err.Error(),
		}
	}

	o.logger.WithField("booking_id", req.BookingID).Info("Remaining balance settled through gateway")

	return &VerificationResult{
		BookingID: req.BookingID,
		Status:    models.BookingStatusConfirmed,
	}, nil
}

// SubmitRemainingManual records a manual transaction reference against a
// seat-lock booking's outstanding balance
func (o *PaymentOrchestrator) SubmitRemainingManual(ctx context.Context, bookingID, transactionID string, remaining float64) error {
	if remaining <= 0 {
		return &models.ValidationError{
			Field:   "remaining_amount",
			Message: "no outstanding balance on this booking",
		}
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return &models.ValidationError{
			Field:   "transaction_id",
			Message: "a transaction reference is required",
		}
	}

	if err := o.bookings.SubmitRemainingManual(ctx, bookingID, transactionID, remaining); err != nil {
		return err
	}

	o.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"amount":     remaining,
	}).Info("Remaining balance submitted for manual verification")
	return nil
}
