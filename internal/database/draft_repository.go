package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tripveda/booking-backend/internal/models"
)

// DraftRepository persists in-progress booking drafts, one row per user and
// trip. Contact and passenger payloads live in JSONB columns.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save creates or overwrites the draft for (user, trip)
func (r *DraftRepository) Save(draft *models.BookingDraft) error {
	contactJSON, err := json.Marshal(draft.Contact)
	if err != nil {
		return fmt.Errorf("failed to marshal contact_details: %w", err)
	}
	passengersJSON, err := json.Marshal(draft.Passengers)
	if err != nil {
		return fmt.Errorf("failed to marshal passengers: %w", err)
	}

	query := `
		INSERT INTO booking_drafts (
			user_id, trip_id, contact_details, passengers,
			payment_type, special_requirements, saved_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, trip_id) DO UPDATE SET
			contact_details = EXCLUDED.contact_details,
			passengers = EXCLUDED.passengers,
			payment_type = EXCLUDED.payment_type,
			special_requirements = EXCLUDED.special_requirements,
			saved_at = EXCLUDED.saved_at,
			expires_at = EXCLUDED.expires_at`

	_, err = r.db.Exec(query,
		draft.UserID, draft.TripID, contactJSON, passengersJSON,
		draft.PaymentType, draft.SpecialRequirements, draft.SavedAt, draft.ExpiresAt,
	)
	return err
}

// Get returns the draft for (user, trip), or nil when none exists
func (r *DraftRepository) Get(userID uuid.UUID, tripID string) (*models.BookingDraft, error) {
	query := `
		SELECT user_id, trip_id, contact_details, passengers,
		       payment_type, special_requirements, saved_at, expires_at
		FROM booking_drafts
		WHERE user_id = $1 AND trip_id = $2`

	var draft models.BookingDraft
	var contactJSON, passengersJSON []byte

	err := r.db.QueryRow(query, userID, tripID).Scan(
		&draft.UserID, &draft.TripID, &contactJSON, &passengersJSON,
		&draft.PaymentType, &draft.SpecialRequirements, &draft.SavedAt, &draft.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(contactJSON, &draft.Contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contact_details: %w", err)
	}
	if err := json.Unmarshal(passengersJSON, &draft.Passengers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal passengers: %w", err)
	}

	return &draft, nil
}

// Delete removes the draft for (user, trip); removing a missing draft is not
// an error
func (r *DraftRepository) Delete(userID uuid.UUID, tripID string) error {
	_, err := r.db.Exec(`DELETE FROM booking_drafts WHERE user_id = $1 AND trip_id = $2`, userID, tripID)
	return err
}

// DeleteExpired removes every draft past its expiry instant and returns the
// number removed
func (r *DraftRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM booking_drafts WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
