package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripveda/booking-backend/internal/models"
)

type countingFetcher struct {
	calls  atomic.Int64
	booked atomic.Int64
}

func (f *countingFetcher) GetAvailability(ctx context.Context, tripID string) (*models.TripAvailability, error) {
	f.calls.Add(1)
	return &models.TripAvailability{
		TripID:          tripID,
		MaxParticipants: 40,
		BookedSeats:     int(f.booked.Load()),
	}, nil
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		available int
		want      UrgencyLevel
	}{
		{"all seats free", 40, 40, UrgencyPlenty},
		{"just above half", 40, 21, UrgencyPlenty},
		{"exactly half", 40, 20, UrgencyFillingFast},
		{"exactly twenty percent", 40, 8, UrgencyCritical},
		{"five seats on big trip", 200, 5, UrgencyCritical},
		{"low ratio on big trip", 200, 6, UrgencyCritical},
		{"big trip mostly free", 200, 150, UrgencyPlenty},
		{"none left", 40, 0, UrgencySoldOut},
		{"negative clamp", 40, -3, UrgencySoldOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUrgency(tt.max, tt.available))
		})
	}
}

func TestSeatMonitorPollsImmediately(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	fetcher := &countingFetcher{}
	monitor := NewSeatMonitor(fetcher, "trip-goa-01", time.Hour, logger)
	monitor.Start(context.Background())
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return monitor.Latest() != nil
	}, time.Second, 5*time.Millisecond)

	snapshot := monitor.Latest()
	assert.Equal(t, "trip-goa-01", snapshot.TripID)
	assert.Equal(t, 40, snapshot.Available)
	assert.Equal(t, UrgencyPlenty, snapshot.Urgency)
}

func TestSeatMonitorStopIsIdempotent(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	fetcher := &countingFetcher{}
	monitor := NewSeatMonitor(fetcher, "trip-goa-01", 5*time.Millisecond, logger)
	monitor.Start(context.Background())

	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	monitor.Stop()
	monitor.Stop()

	settled := fetcher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, fetcher.calls.Load(), "no polls after stop")
}

func TestSeatMonitorStartTwiceIsNoop(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	fetcher := &countingFetcher{}
	monitor := NewSeatMonitor(fetcher, "trip-goa-01", time.Hour, logger)
	monitor.Start(context.Background())
	monitor.Start(context.Background())
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 1
	}, time.Second, time.Millisecond)
	// A second Start must not spawn a second poll loop
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), fetcher.calls.Load())
}

func TestSeatMonitorTracksBookedSeats(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	fetcher := &countingFetcher{}
	fetcher.booked.Store(36)
	monitor := NewSeatMonitor(fetcher, "trip-goa-01", 5*time.Millisecond, logger)
	monitor.Start(context.Background())
	defer monitor.Stop()

	require.Eventually(t, func() bool {
		snapshot := monitor.Latest()
		return snapshot != nil && snapshot.Urgency == UrgencyCritical
	}, time.Second, time.Millisecond)

	fetcher.booked.Store(40)
	require.Eventually(t, func() bool {
		snapshot := monitor.Latest()
		return snapshot != nil && snapshot.Urgency == UrgencySoldOut
	}, time.Second, time.Millisecond)
}
