package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingDraft is a time-limited snapshot of in-progress wizard state, one
// per user and trip. Its lifecycle is independent of any booking record: it
// is deleted on successful booking, on explicit dismissal, or lazily when
// read after expiry.
type BookingDraft struct {
	UserID              uuid.UUID      `json:"user_id" db:"user_id"`
	TripID              string         `json:"trip_id" db:"trip_id"`
	Contact             ContactDetails `json:"contact_details"`
	Passengers          []Passenger    `json:"passengers"`
	PaymentType         PaymentType    `json:"payment_type" db:"payment_type"`
	SpecialRequirements string         `json:"special_requirements" db:"special_requirements"`
	SavedAt             time.Time      `json:"saved_at" db:"saved_at"`
	ExpiresAt           time.Time      `json:"expires_at" db:"expires_at"`
}

// IsExpired reports whether the draft has passed its expiry instant
func (d *BookingDraft) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}
