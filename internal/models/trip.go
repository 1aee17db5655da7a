package models

import (
	"time"
)

// SeatLockMode controls how a discount interacts with the seat-lock amount
type SeatLockMode string

const (
	// SeatLockModeFixed pays min(seatLockPrice, discountedTotal) now
	SeatLockModeFixed SeatLockMode = "fixed"
	// SeatLockModeAutoAdjust collapses to a full payment when the discount
	// pushes the total below the seat-lock threshold
	SeatLockModeAutoAdjust SeatLockMode = "auto_adjust"
)

// Trip is the read-only trip snapshot fetched once per booking session
type Trip struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	BasePrice         float64      `json:"base_price"`
	EarlyBirdPrice    *float64     `json:"early_bird_price,omitempty"`
	EarlyBirdDeadline *time.Time   `json:"early_bird_deadline,omitempty"`
	SeatLockAmount    *float64     `json:"seat_lock_amount,omitempty"`
	SeatLockMode      SeatLockMode `json:"seat_lock_mode"`
	DepartureDate     time.Time    `json:"departure_date"`
	MaxParticipants   int          `json:"max_participants"`
}

// TripAvailability is the polled seat-count snapshot for a trip
type TripAvailability struct {
	TripID          string `json:"trip_id"`
	MaxParticipants int    `json:"max_participants"`
	BookedSeats     int    `json:"booked_seats"`
}

// AvailableSeats returns remaining capacity, never negative
func (a *TripAvailability) AvailableSeats() int {
	available := a.MaxParticipants - a.BookedSeats
	if available < 0 {
		return 0
	}
	return available
}
