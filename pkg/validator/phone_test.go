package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	v := NewPhoneValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain ten digits", "9876543210", "9876543210", nil},
		{"with country code", "+91 98765 43210", "9876543210", nil},
		{"with trunk zero", "09876543210", "9876543210", nil},
		{"with separators", "98765-43210", "9876543210", nil},
		{"starts with six", "6123456789", "6123456789", nil},
		{"empty", "", "", ErrEmptyPhone},
		{"too short", "98765", "", ErrInvalidLength},
		{"too long", "98765432101", "", ErrInvalidLength},
		{"letters", "98765abcde", "", ErrInvalidFormat},
		{"landline prefix", "1234567890", "", ErrInvalidPrefix},
		{"starts with five", "5876543210", "", ErrInvalidPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatPhone(t *testing.T) {
	v := NewPhoneValidator()

	formatted, err := v.Format("+919876543210")
	assert.NoError(t, err)
	assert.Equal(t, "98765 43210", formatted)

	_, err = v.Format("12345")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	v := NewPhoneValidator()
	assert.True(t, v.IsValid("9876543210"))
	assert.False(t, v.IsValid("0000000000"))
}
