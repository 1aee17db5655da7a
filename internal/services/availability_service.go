package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripveda/booking-backend/internal/models"
)

// UrgencyLevel classifies how quickly a trip is filling up. It feeds
// read-only banners; it never gates submission.
type UrgencyLevel string

const (
	UrgencyPlenty      UrgencyLevel = "plenty"
	UrgencyFillingFast UrgencyLevel = "filling_fast"
	UrgencyCritical    UrgencyLevel = "critical"
	UrgencySoldOut     UrgencyLevel = "sold_out"
)

// AvailabilitySnapshot is the latest polled seat state for a trip
type AvailabilitySnapshot struct {
	TripID    string       `json:"trip_id"`
	Max       int          `json:"max_participants"`
	Booked    int          `json:"booked_seats"`
	Available int          `json:"available_seats"`
	Urgency   UrgencyLevel `json:"urgency"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// AvailabilityFetcher is the collaborator call the monitor polls
type AvailabilityFetcher interface {
	GetAvailability(ctx context.Context, tripID string) (*models.TripAvailability, error)
}

// SeatMonitor polls seat availability for one trip on a fixed interval.
// Polls never overlap: each fetch completes (or its context is cancelled)
// before the next tick is considered. Stop is idempotent and waits for any
// in-flight request to finish.
type SeatMonitor struct {
	fetcher  AvailabilityFetcher
	tripID   string
	interval time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	latest  *AvailabilitySnapshot
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewSeatMonitor creates a monitor for one trip
func NewSeatMonitor(fetcher AvailabilityFetcher, tripID string, interval time.Duration, logger *logrus.Logger) *SeatMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SeatMonitor{
		fetcher:  fetcher,
		tripID:   tripID,
		interval: interval,
		logger:   logger,
	}
}

// Start begins polling. Starting an already-started monitor is a no-op.
func (m *SeatMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true
	go m.run(pollCtx)
}

// Stop cancels polling and waits for the in-flight request, if any, to be
// awaited or discarded. Safe to call more than once.
func (m *SeatMonitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	cancel()
	<-done
}

// Latest returns the most recent snapshot, or nil before the first
// successful poll
func (m *SeatMonitor) Latest() *AvailabilitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

func (m *SeatMonitor) run(ctx context.Context) {
	defer close(m.done)

	// Poll immediately so the first banner doesn't wait a full interval
	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *SeatMonitor) poll(ctx context.Context) {
	availability, err := m.fetcher.GetAvailability(ctx, m.tripID)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.WithError(err).WithField("trip_id", m.tripID).Warn("Seat availability poll failed")
		}
		return
	}

	snapshot := &AvailabilitySnapshot{
		TripID:    m.tripID,
		Max:       availability.MaxParticipants,
		Booked:    availability.BookedSeats,
		Available: availability.AvailableSeats(),
		Urgency:   ClassifyUrgency(availability.MaxParticipants, availability.AvailableSeats()),
		FetchedAt: time.Now(),
	}

	m.mu.Lock()
	m.latest = snapshot
	m.mu.Unlock()
}

// ClassifyUrgency derives the urgency banner from remaining capacity
func ClassifyUrgency(max, available int) UrgencyLevel {
	if available <= 0 {
		return UrgencySoldOut
	}
	if available <= 5 {
		return UrgencyCritical
	}
	if max > 0 {
		ratio := float64(available) / float64(max)
		if ratio <= 0.2 {
			return UrgencyCritical
		}
		if ratio <= 0.5 {
			return UrgencyFillingFast
		}
	}
	return UrgencyPlenty
}
