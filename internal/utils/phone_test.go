package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"10 digits", "5551234567", true},
		{"15 digits", "123456789012345", true},
		{"formatted US", "+1 (555) 123-4567", true},
		{"9 digits too short", "555123456", false},
		{"16 digits too long", "1234567890123456", false},
		{"empty", "", false},
		{"letters only", "not-a-phone", false},
		{"digits with noise", "555.123.4567 ext", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhoneNumber(tt.input))
		})
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare 10 digits gets US prefix", "5551234567", "+15551234567"},
		{"formatted 10 digits", "(555) 123-4567", "+15551234567"},
		{"11 digits starting with 1", "15551234567", "+15551234567"},
		{"formatted 11 digits", "+1 (555) 123-4567", "+15551234567"},
		{"international passthrough keeps raw", "+44 20 7946 0958", "+44 20 7946 0958"},
		{"11 digits not starting with 1", "75551234567", "+75551234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneNumber(tt.input))
		})
	}
}
