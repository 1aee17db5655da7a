package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestPassenger() Passenger {
	return Passenger{
		Name:    "Asha Verma",
		Phone:   "9876543210",
		Age:     22,
		Gender:  "female",
		College: CollegeInfo{Name: "NIT Trichy"},
	}
}

func TestPassengerValidate(t *testing.T) {
	p := validTestPassenger()
	assert.NoError(t, p.Validate(0, 15))

	tests := []struct {
		name      string
		mutate    func(*Passenger)
		wantField string
	}{
		{"missing name", func(p *Passenger) { p.Name = "" }, "passengers[2].name"},
		{"missing phone", func(p *Passenger) { p.Phone = "" }, "passengers[2].phone"},
		{"bad phone", func(p *Passenger) { p.Phone = "abc" }, "passengers[2].phone"},
		{"under age", func(p *Passenger) { p.Age = 14 }, "passengers[2].age"},
		{"missing gender", func(p *Passenger) { p.Gender = "" }, "passengers[2].gender"},
		{"missing college", func(p *Passenger) { p.College = CollegeInfo{} }, "passengers[2].college"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validTestPassenger()
			tt.mutate(&p)

			err := p.Validate(2, 15)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestPassengerCollegeOptOut(t *testing.T) {
	p := validTestPassenger()
	p.College = CollegeInfo{NotPreferToSay: true}
	assert.NoError(t, p.Validate(0, 15))
}

func TestCollegeNormalizeClearsOnOptOut(t *testing.T) {
	college := CollegeInfo{Name: "NIT Trichy", CollegeID: "NT-123", NotPreferToSay: true}
	college.Normalize()
	assert.Empty(t, college.Name)
	assert.Empty(t, college.CollegeID)

	kept := CollegeInfo{Name: "NIT Trichy", CollegeID: "NT-123"}
	kept.Normalize()
	assert.Equal(t, "NIT Trichy", kept.Name)
}
