package models

import (
	"strings"

	"github.com/tripveda/booking-backend/pkg/validator"
)

var phoneValidator = validator.NewPhoneValidator()

// EmergencyContact is the person reachable when a passenger is not
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// ContactDetails is the booking-level contact captured at the first wizard step
type ContactDetails struct {
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

// Validate checks the Contact-step gate. Email is required for submission
// consistency even though older entry points tolerated its absence.
func (c *ContactDetails) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "contact name is required"}
	}
	if strings.TrimSpace(c.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "contact phone is required"}
	}
	if _, err := phoneValidator.Validate(c.Phone); err != nil {
		return &ValidationError{Field: "phone", Message: err.Error()}
	}
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Field: "email", Message: "contact email is required"}
	}
	if !strings.Contains(c.Email, "@") {
		return &ValidationError{Field: "email", Message: "contact email is invalid"}
	}
	if c.EmergencyContact == nil {
		return &ValidationError{Field: "emergency_contact", Message: "emergency contact is required"}
	}
	if strings.TrimSpace(c.EmergencyContact.Name) == "" {
		return &ValidationError{Field: "emergency_contact.name", Message: "emergency contact name is required"}
	}
	if strings.TrimSpace(c.EmergencyContact.Phone) == "" {
		return &ValidationError{Field: "emergency_contact.phone", Message: "emergency contact phone is required"}
	}
	if _, err := phoneValidator.Validate(c.EmergencyContact.Phone); err != nil {
		return &ValidationError{Field: "emergency_contact.phone", Message: err.Error()}
	}
	return nil
}
