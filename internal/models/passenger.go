package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CollegeInfo identifies a passenger's college, or records an explicit refusal
type CollegeInfo struct {
	Name           string `json:"name,omitempty"`
	CollegeID      string `json:"college_id,omitempty"`
	NotPreferToSay bool   `json:"not_prefer_to_say"`
}

// Normalize nulls out the name/id when the passenger preferred not to say
func (c *CollegeInfo) Normalize() {
	if c.NotPreferToSay {
		c.Name = ""
		c.CollegeID = ""
	}
}

// Passenger is one traveller on the booking; the passenger count multiplies
// every per-person amount in the breakdown
type Passenger struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Age     int         `json:"age"`
	Gender  string      `json:"gender"`
	College CollegeInfo `json:"college"`
}

// Validate checks a single passenger against the Passengers-step gate.
// index is only used to point at the offending entry in the error.
func (p *Passenger) Validate(index, minAge int) error {
	field := func(name string) string { return fmt.Sprintf("passengers[%d].%s", index, name) }

	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: field("name"), Message: "passenger name is required"}
	}
	if strings.TrimSpace(p.Phone) == "" {
		return &ValidationError{Field: field("phone"), Message: "passenger phone is required"}
	}
	if _, err := phoneValidator.Validate(p.Phone); err != nil {
		return &ValidationError{Field: field("phone"), Message: err.Error()}
	}
	if p.Age < minAge {
		return &ValidationError{
			Field:   field("age"),
			Message: fmt.Sprintf("passenger must be at least %d years old", minAge),
		}
	}
	if strings.TrimSpace(p.Gender) == "" {
		return &ValidationError{Field: field("gender"), Message: "passenger gender is required"}
	}
	if !p.College.NotPreferToSay && strings.TrimSpace(p.College.Name) == "" {
		return &ValidationError{
			Field:   field("college"),
			Message: "college name is required unless marked as prefer not to say",
		}
	}
	return nil
}

// PassengerTemplate is a reusable passenger record saved by a user
type PassengerTemplate struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Name      string      `json:"name" db:"name"`
	Phone     string      `json:"phone" db:"phone"`
	Age       int         `json:"age" db:"age"`
	College   CollegeInfo `json:"college" db:"-"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
