package services

import (
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripveda/booking-backend/internal/database"
	"github.com/tripveda/booking-backend/internal/models"
)

func setupDraftServiceTest(t *testing.T) (*DraftService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	repo := database.NewDraftRepository(sqlx.NewDb(db, "postgres"))
	return NewDraftService(repo, 7*24*time.Hour, logger), mock
}

func draftRow(userID uuid.UUID, tripID string, expiresAt time.Time) *sqlmock.Rows {
	contactJSON, _ := json.Marshal(models.ContactDetails{
		Name: "Asha Verma", Email: "asha@example.com", Phone: "9876543210",
	})
	passengersJSON, _ := json.Marshal([]models.Passenger{
		{Name: "Asha Verma", Phone: "9876543210", Age: 22, Gender: "female"},
	})
	return sqlmock.NewRows([]string{
		"user_id", "trip_id", "contact_details", "passengers",
		"payment_type", "special_requirements", "saved_at", "expires_at",
	}).AddRow(
		userID, tripID, contactJSON, passengersJSON,
		string(models.PaymentTypeFull), "", time.Now().Add(-time.Hour), expiresAt,
	)
}

func TestDraftServiceLoadReturnsLiveDraft(t *testing.T) {
	svc, mock := setupDraftServiceTest(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT user_id, trip_id, contact_details, passengers").
		WithArgs(userID, "trip-goa-01").
		WillReturnRows(draftRow(userID, "trip-goa-01", time.Now().Add(time.Hour)))

	draft, err := svc.Load(userID, "trip-goa-01")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Asha Verma", draft.Contact.Name)
}

func TestDraftServiceLoadDeletesExpiredDraft(t *testing.T) {
	svc, mock := setupDraftServiceTest(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT user_id, trip_id, contact_details, passengers").
		WithArgs(userID, "trip-goa-01").
		WillReturnRows(draftRow(userID, "trip-goa-01", time.Now().Add(-time.Minute)))
	mock.ExpectExec("DELETE FROM booking_drafts WHERE user_id").
		WithArgs(userID, "trip-goa-01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	draft, err := svc.Load(userID, "trip-goa-01")
	require.NoError(t, err)
	assert.Nil(t, draft, "expired draft is hidden")
	assert.NoError(t, mock.ExpectationsWereMet(), "stale row gets deleted on read")
}

func TestDraftServiceSaveRestartsTTL(t *testing.T) {
	svc, mock := setupDraftServiceTest(t)
	userID := uuid.New()

	mock.ExpectExec("INSERT INTO booking_drafts").
		WithArgs(
			userID, "trip-goa-01", sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.PaymentTypeFull, "", sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Save(userID, "trip-goa-01", DraftPayload{
		Contact:     models.ContactDetails{Name: "Asha Verma", Email: "asha@example.com", Phone: "9876543210"},
		Passengers:  []models.Passenger{{Name: "Asha Verma", Phone: "9876543210", Age: 22, Gender: "female"}},
		PaymentType: models.PaymentTypeFull,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebouncerCoalescesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Close()

	var fires atomic.Int64
	for i := 0; i < 10; i++ {
		d.Schedule(func() { fires.Add(1) })
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return fires.Load() == 1
	}, time.Second, time.Millisecond)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(1), fires.Load(), "burst collapses to a single fire")
}

func TestDebouncerRearmsAfterFire(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)
	defer d.Close()

	var fires atomic.Int64
	d.Schedule(func() { fires.Add(1) })
	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, time.Millisecond)

	d.Schedule(func() { fires.Add(1) })
	require.Eventually(t, func() bool { return fires.Load() == 2 }, time.Second, time.Millisecond)
}

func TestDebouncerCancelStopsPendingFire(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Close()

	var fires atomic.Int64
	d.Schedule(func() { fires.Add(1) })
	d.Cancel()

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, fires.Load())

	// Cancel does not kill the debouncer
	d.Schedule(func() { fires.Add(1) })
	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, time.Millisecond)
}

func TestDebouncerCloseWaitsForRunningCallback(t *testing.T) {
	d := NewDebouncer(time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	d.Schedule(func() {
		close(started)
		<-release
		finished.Store(true)
	})

	<-started
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()

	d.Close()
	assert.True(t, finished.Load(), "Close returns only after the in-flight callback completes")
}

func TestDebouncerCloseIsTerminal(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var fires atomic.Int64
	d.Schedule(func() { fires.Add(1) })
	d.Close()

	d.Schedule(func() { fires.Add(1) })
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, fires.Load(), "nothing fires after close")
}
