package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/database"
	"github.com/tripveda/booking-backend/internal/models"
)

// DraftStore is the slice of draft persistence the wizard depends on
type DraftStore interface {
	Save(userID uuid.UUID, tripID string, payload DraftPayload) error
	Load(userID uuid.UUID, tripID string) (*models.BookingDraft, error)
	Discard(userID uuid.UUID, tripID string) error
}

// DraftPayload is the wizard state worth keeping across sessions
type DraftPayload struct {
	Contact             models.ContactDetails
	Passengers          []models.Passenger
	PaymentType         models.PaymentType
	SpecialRequirements string
}

// DraftService persists in-progress booking form state per user and trip
// with a time-to-live. Expired drafts are deleted lazily on read; a cron
// sweep catches the rest.
type DraftService struct {
	repo   *database.DraftRepository
	ttl    time.Duration
	logger *logrus.Logger
}

// NewDraftService creates a new draft service
func NewDraftService(repo *database.DraftRepository, ttl time.Duration, logger *logrus.Logger) *DraftService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &DraftService{repo: repo, ttl: ttl, logger: logger}
}

// Save overwrites the draft for (user, trip) and restarts its TTL
func (s *DraftService) Save(userID uuid.UUID, tripID string, payload DraftPayload) error {
	now := time.Now()
	draft := &models.BookingDraft{
		UserID:              userID,
		TripID:              tripID,
		Contact:             payload.Contact,
		Passengers:          payload.Passengers,
		PaymentType:         payload.PaymentType,
		SpecialRequirements: payload.SpecialRequirements,
		SavedAt:             now,
		ExpiresAt:           now.Add(s.ttl),
	}
	if err := s.repo.Save(draft); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"trip_id": tripID,
	}).Debug("Draft saved")
	return nil
}

// Load returns the live draft for (user, trip), deleting and hiding it when
// it is past its expiry instant
func (s *DraftService) Load(userID uuid.UUID, tripID string) (*models.BookingDraft, error) {
	draft, err := s.repo.Get(userID, tripID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, nil
	}
	if draft.IsExpired(time.Now()) {
		if err := s.repo.Delete(userID, tripID); err != nil {
			s.logger.WithError(err).Warn("Failed to delete expired draft")
		}
		return nil, nil
	}
	return draft, nil
}

// Discard removes the draft on explicit dismissal or successful booking
func (s *DraftService) Discard(userID uuid.UUID, tripID string) error {
	return s.repo.Delete(userID, tripID)
}

// Debouncer coalesces rapid mutations into a single write after a quiet
// period. Rearming replaces the pending fire; Cancel guarantees a pending
// fire cannot run afterwards, so a stale autosave can never resurrect an
// intentionally deleted draft.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	dead  bool

	// run is held for the duration of a firing callback so Close can wait
	// out a save that is already in flight
	run sync.Mutex
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = time.Second
	}
	return &Debouncer{delay: delay}
}

// Schedule (re)arms the single-shot timer with fn
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dead {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.run.Lock()
		defer d.run.Unlock()
		d.mu.Lock()
		if d.dead {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		fn()
	})
}

// Cancel stops any pending fire; the debouncer stays usable
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close cancels any pending fire, refuses further scheduling, and does not
// return until a callback that already started has finished. Callers can
// therefore delete the draft after Close without a late save overwriting it.
func (d *Debouncer) Close() {
	d.mu.Lock()
	d.dead = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	// Wait out an in-flight callback; one that has not reached fn yet
	// will see dead and return without firing
	d.run.Lock()
	d.run.Unlock()
}
