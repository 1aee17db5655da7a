package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
	"github.com/tripveda/booking-backend/internal/pricing"
)

// WizardStep is one of the four ordered booking steps
type WizardStep string

const (
	StepContact      WizardStep = "contact"
	StepPassengers   WizardStep = "passengers"
	StepPayment      WizardStep = "payment"
	StepConfirmation WizardStep = "confirmation"
)

var stepOrder = []WizardStep{StepContact, StepPassengers, StepPayment, StepConfirmation}

func stepIndex(s WizardStep) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return 0
}

// TripSource is the slice of the booking collaborator the wizard reads from
type TripSource interface {
	AvailabilityFetcher
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	GetBookingContext(ctx context.Context, userID uuid.UUID) (*models.BookingContext, error)
}

// CouponApplier validates a coupon code against a trip and amount
type CouponApplier interface {
	Apply(ctx context.Context, code, tripID string, amount float64) (*models.CouponResult, error)
}

// BookingSubmitter runs the active payment protocol's submit phase
type BookingSubmitter interface {
	Submit(ctx context.Context, sub *SubmissionContext) (*SubmissionResult, error)
}

// WizardSession is one user's in-progress booking for one trip. All mutation
// goes through WizardService methods under the session lock.
type WizardSession struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Trip   *models.Trip

	mu                  sync.Mutex
	step                WizardStep
	contact             models.ContactDetails
	passengers          []models.Passenger
	paymentType         models.PaymentType
	specialRequirements string
	coupon              *models.Coupon
	useWallet           bool
	breakdown           pricing.Breakdown
	bookingCtx          models.BookingContext
	pendingDraft        *models.BookingDraft

	// couponRev fences in-flight coupon validations: a response whose
	// captured revision no longer matches is discarded
	couponRev int

	autosave *Debouncer
	monitor  *SeatMonitor
	closed   bool
}

// SessionView is the read snapshot handlers serialize back to the client
type SessionView struct {
	SessionID           uuid.UUID                `json:"session_id"`
	Step                WizardStep               `json:"step"`
	Trip                *models.Trip             `json:"trip"`
	Contact             models.ContactDetails    `json:"contact"`
	Passengers          []models.Passenger       `json:"passengers"`
	PaymentType         models.PaymentType       `json:"payment_type"`
	SpecialRequirements string                   `json:"special_requirements,omitempty"`
	Coupon              *models.Coupon           `json:"coupon,omitempty"`
	UseWallet           bool                     `json:"use_wallet"`
	WalletBalance       float64                  `json:"wallet_balance"`
	ReferralEligible    bool                     `json:"referral_eligible"`
	Breakdown           pricing.Breakdown        `json:"breakdown"`
	Availability        *AvailabilitySnapshot    `json:"availability,omitempty"`
	ResumableDraft      *models.BookingDraft     `json:"resumable_draft,omitempty"`
}

// WizardService owns the active booking sessions and drives each one through
// the four steps
type WizardService struct {
	trips     TripSource
	coupons   CouponApplier
	submitter BookingSubmitter
	drafts    DraftStore
	logger    *logrus.Logger

	referralAmount float64
	minAge         int
	autosaveDelay  time.Duration
	pollInterval   time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*WizardSession
}

// WizardConfig holds the tunables the wizard reads from the app config
type WizardConfig struct {
	ReferralAmount  float64
	MinPassengerAge int
	AutosaveDelay   time.Duration
	PollInterval    time.Duration
}

// NewWizardService creates the wizard service
func NewWizardService(trips TripSource, coupons CouponApplier, submitter BookingSubmitter, drafts DraftStore, cfg WizardConfig, logger *logrus.Logger) *WizardService {
	if cfg.MinPassengerAge <= 0 {
		cfg.MinPassengerAge = 15
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = time.Second
	}
	return &WizardService{
		trips:          trips,
		coupons:        coupons,
		submitter:      submitter,
		drafts:         drafts,
		logger:         logger,
		referralAmount: cfg.ReferralAmount,
		minAge:         cfg.MinPassengerAge,
		autosaveDelay:  cfg.AutosaveDelay,
		pollInterval:   cfg.PollInterval,
		sessions:       make(map[uuid.UUID]*WizardSession),
	}
}

// StartSession fetches the trip snapshot once, loads the user's booking
// context, starts the seat monitor, and surfaces any resumable draft. The
// session always begins at the contact step; resuming a draft fills the
// fields but does not skip the gates.
func (s *WizardService) StartSession(ctx context.Context, userID uuid.UUID, tripID string) (*SessionView, error) {
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.DepartureDate.IsZero() && time.Now().After(trip.DepartureDate) {
		return nil, &models.ValidationError{Field: "trip_id", Message: "this trip has already departed"}
	}

	bookingCtx := models.BookingContext{}
	if bc, err := s.trips.GetBookingContext(ctx, userID); err != nil {
		// Degrade quietly: the booking still works without referral or
		// wallet, and the booking service re-checks eligibility anyway
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load booking context")
	} else {
		bookingCtx = *bc
	}

	session := &WizardSession{
		ID:          uuid.New(),
		UserID:      userID,
		Trip:        trip,
		step:        StepContact,
		paymentType: models.PaymentTypeFull,
		bookingCtx:  bookingCtx,
		autosave:    NewDebouncer(s.autosaveDelay),
		monitor:     NewSeatMonitor(s.trips, tripID, s.pollInterval, s.logger),
	}
	session.breakdown = s.quote(session)

	if draft, err := s.drafts.Load(userID, tripID); err != nil {
		s.logger.WithError(err).Warn("Failed to load booking draft")
	} else if draft != nil {
		session.pendingDraft = draft
	}

	// The monitor outlives this request; it stops with the session
	session.monitor.Start(context.Background())

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"trip_id":    tripID,
		"user_id":    userID,
	}).Info("Booking session started")

	return s.view(session), nil
}

// ResumeDraft copies the saved draft into the session. The draft stays in
// the store; it keeps autosaving until the booking succeeds or the user
// dismisses it.
func (s *WizardService) ResumeDraft(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	draft := session.pendingDraft
	if draft == nil {
		session.mu.Unlock()
		return nil, &models.ValidationError{Field: "draft", Message: "no draft to resume"}
	}
	session.contact = draft.Contact
	session.passengers = draft.Passengers
	if draft.PaymentType != "" {
		session.paymentType = draft.PaymentType
	}
	session.specialRequirements = draft.SpecialRequirements
	session.pendingDraft = nil
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	return s.view(session), nil
}

// DismissDraft throws the saved draft away and starts the session clean
func (s *WizardService) DismissDraft(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.pendingDraft = nil
	session.mu.Unlock()

	if err := s.drafts.Discard(session.UserID, session.Trip.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to discard booking draft")
	}
	return s.view(session), nil
}

// UpdateContact stores the contact details and schedules an autosave. No
// validation here; the gate runs when the user advances.
func (s *WizardService) UpdateContact(sessionID uuid.UUID, contact models.ContactDetails) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.contact = contact
	session.mu.Unlock()

	s.scheduleAutosave(session)
	return s.view(session), nil
}

// UpdatePassengers stores the passenger list, recomputes amounts (the count
// multiplies everything) and schedules an autosave
func (s *WizardService) UpdatePassengers(sessionID uuid.UUID, passengers []models.Passenger, specialRequirements string) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	// An explicit refusal nulls out whatever college fields came along
	for i := range passengers {
		passengers[i].College.Normalize()
	}

	session.mu.Lock()
	session.passengers = passengers
	session.specialRequirements = specialRequirements
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	s.scheduleAutosave(session)
	return s.view(session), nil
}

// Advance moves one step forward after the current step's gate passes.
// Advancing from a step that is already past has no effect.
func (s *WizardService) Advance(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	switch session.step {
	case StepContact:
		if err := session.contact.Validate(); err != nil {
			return nil, err
		}
		session.step = StepPassengers
	case StepPassengers:
		if len(session.passengers) == 0 {
			return nil, &models.ValidationError{Field: "passengers", Message: "at least one passenger is required"}
		}
		for i := range session.passengers {
			if err := session.passengers[i].Validate(i, s.minAge); err != nil {
				return nil, err
			}
		}
		// Entering the payment step commits a fresh breakdown
		session.breakdown = s.quote(session)
		session.step = StepPayment
	case StepPayment:
		session.breakdown = s.quote(session)
		session.step = StepConfirmation
	case StepConfirmation:
		// Nothing past confirmation; submission is its own call
	}

	return s.viewLocked(session), nil
}

// Back moves one step backward. Entered data survives; going back never
// clears anything.
func (s *WizardService) Back(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if idx := stepIndex(session.step); idx > 0 {
		session.step = stepOrder[idx-1]
	}
	return s.viewLocked(session), nil
}

// GoTo jumps directly to an earlier step. Forward jumps must go through
// Advance so no gate is skipped.
func (s *WizardService) GoTo(sessionID uuid.UUID, step WizardStep) (*SessionView, error) {
	target := -1
	for i, known := range stepOrder {
		if known == step {
			target = i
		}
	}
	if target < 0 {
		return nil, &models.ValidationError{Field: "step", Message: "unknown wizard step"}
	}

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if target > stepIndex(session.step) {
		return nil, &models.ValidationError{Field: "step", Message: "cannot skip ahead past unvalidated steps"}
	}
	session.step = stepOrder[target]
	return s.viewLocked(session), nil
}

// SetPaymentType switches between full and seat-lock payment and recomputes
// the breakdown
func (s *WizardService) SetPaymentType(sessionID uuid.UUID, paymentType models.PaymentType) (*SessionView, error) {
	if paymentType != models.PaymentTypeFull && paymentType != models.PaymentTypeSeatLock {
		return nil, &models.ValidationError{Field: "payment_type", Message: "unknown payment type"}
	}

	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.paymentType = paymentType
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	s.scheduleAutosave(session)
	return s.view(session), nil
}

// SetWalletUsage toggles paying part of the due amount from the wallet
func (s *WizardService) SetWalletUsage(sessionID uuid.UUID, use bool) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.useWallet = use
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	return s.view(session), nil
}

// ApplyCoupon validates the code with the coupon service and, if the session
// hasn't changed coupon state in the meantime, applies it. At most one coupon
// is active; applying a new one replaces the old.
func (s *WizardService) ApplyCoupon(ctx context.Context, sessionID uuid.UUID, code string) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	rev := session.couponRev
	tripID := session.Trip.ID
	// Validate against the pre-coupon amount: referral is suppressed the
	// moment a coupon lands, so the reference amount is the plain base
	amount := session.Trip.BasePrice * float64(max(len(session.passengers), 1))
	session.mu.Unlock()

	result, err := s.coupons.Apply(ctx, code, tripID, amount)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.couponRev != rev {
		session.mu.Unlock()
		return nil, &models.CouponError{Code: code, Message: "coupon state changed while validating, please retry"}
	}
	session.coupon = &result.Coupon
	session.couponRev++
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"coupon":     result.Coupon.Code,
	}).Info("Coupon applied")

	return s.view(session), nil
}

// RemoveCoupon clears the active coupon, which can restore the referral
// discount
func (s *WizardService) RemoveCoupon(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.coupon = nil
	session.couponRev++
	session.breakdown = s.quote(session)
	session.mu.Unlock()

	return s.view(session), nil
}

// Availability returns the monitor's latest snapshot
func (s *WizardService) Availability(sessionID uuid.UUID) (*AvailabilitySnapshot, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.monitor.Latest(), nil
}

// Submit commits the booking at the confirmation step through the active
// payment protocol. The breakdown is recomputed one last time so the
// submitted amounts can't predate a discount change. On any failure the
// session stays at confirmation with everything intact.
func (s *WizardService) Submit(ctx context.Context, sessionID uuid.UUID, transactionID string) (*SubmissionResult, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.step != StepConfirmation {
		session.mu.Unlock()
		return nil, &models.ValidationError{Field: "step", Message: "booking can only be submitted from the confirmation step"}
	}
	// The monitor's snapshot is banner context only; the booking service is
	// the seat authority and rejects a genuinely full trip itself
	session.breakdown = s.quote(session)
	sub := &SubmissionContext{
		UserID:              session.UserID,
		Trip:                *session.Trip,
		Contact:             session.contact,
		Passengers:          append([]models.Passenger(nil), session.passengers...),
		SpecialRequirements: session.specialRequirements,
		Breakdown:           session.breakdown,
		Coupon:              session.coupon,
		TransactionID:       transactionID,
	}
	session.mu.Unlock()

	result, err := s.submitter.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}

	// A gateway submission is only provisional until verification; the
	// draft and session must survive a dismissed checkout
	if !result.RequiresVerification {
		s.Finalize(sessionID)
	}
	return result, nil
}

// Finalize tears the session down after a booking is fully committed: the
// draft is deleted, any queued autosave is killed so it cannot resurrect the
// draft, and the seat monitor stops.
func (s *WizardService) Finalize(sessionID uuid.UUID) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()

	session.autosave.Close()
	session.monitor.Stop()

	if err := s.drafts.Discard(session.UserID, session.Trip.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to delete draft after booking")
	}

	s.logger.WithField("session_id", sessionID).Info("Booking session finalized")
}

// Abandon tears the session down without touching the draft, for when the
// user simply leaves
func (s *WizardService) Abandon(sessionID uuid.UUID) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	// Flush, don't drop: a queued autosave carries the newest edits
	session.autosave.Cancel()
	s.saveDraft(session)

	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()

	session.autosave.Close()
	session.monitor.Stop()
}

// View returns the current session snapshot
func (s *WizardService) View(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// VerifyOwner rejects access to another user's session
func (s *WizardService) VerifyOwner(sessionID, userID uuid.UUID) error {
	session, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return fmt.Errorf("booking session %s not found", sessionID)
	}
	return nil
}

func (s *WizardService) session(id uuid.UUID) (*WizardSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("booking session %s not found", id)
	}
	return session, nil
}

// quote recomputes the breakdown from current session state; callers hold
// the session lock or own the session exclusively
func (s *WizardService) quote(session *WizardSession) pricing.Breakdown {
	wallet := 0.0
	if session.useWallet {
		wallet = session.bookingCtx.WalletBalance
	}
	return pricing.Quote(pricing.QuoteInput{
		TripPrice:         session.Trip.BasePrice,
		EarlyBirdPrice:    session.Trip.EarlyBirdPrice,
		EarlyBirdDeadline: session.Trip.EarlyBirdDeadline,
		SeatLockAmount:    session.Trip.SeatLockAmount,
		SeatLockMode:      session.Trip.SeatLockMode,
		PassengerCount:    len(session.passengers),
		PaymentType:       session.paymentType,
		Coupon:            session.coupon,
		ReferralEligible:  session.bookingCtx.ReferralEligible,
		ReferralAmount:    s.referralAmount,
		WalletBalance:     wallet,
		Now:               time.Now(),
	})
}

func (s *WizardService) scheduleAutosave(session *WizardSession) {
	session.autosave.Schedule(func() {
		s.saveDraft(session)
	})
}

func (s *WizardService) saveDraft(session *WizardSession) {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	payload := DraftPayload{
		Contact:             session.contact,
		Passengers:          append([]models.Passenger(nil), session.passengers...),
		PaymentType:         session.paymentType,
		SpecialRequirements: session.specialRequirements,
	}
	userID, tripID := session.UserID, session.Trip.ID
	session.mu.Unlock()

	if err := s.drafts.Save(userID, tripID, payload); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"trip_id": tripID,
		}).Warn("Draft autosave failed")
	}
}

func (s *WizardService) view(session *WizardSession) *SessionView {
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.viewLocked(session)
}

func (s *WizardService) viewLocked(session *WizardSession) *SessionView {
	return &SessionView{
		SessionID:           session.ID,
		Step:                session.step,
		Trip:                session.Trip,
		Contact:             session.contact,
		Passengers:          append([]models.Passenger(nil), session.passengers...),
		PaymentType:         session.paymentType,
		SpecialRequirements: session.specialRequirements,
		Coupon:              session.coupon,
		UseWallet:           session.useWallet,
		WalletBalance:       session.bookingCtx.WalletBalance,
		ReferralEligible:    session.bookingCtx.ReferralEligible,
		Breakdown:           session.breakdown,
		Availability:        session.monitor.Latest(),
		ResumableDraft:      session.pendingDraft,
	}
}
