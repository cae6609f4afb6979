package roulette_test

import (
	"errors"
	"strings"
	"testing"

	"ruleta-backend/internal/roulette"
)

func TestParseInitialBalance(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"100", "100", true},
		{"12.75", "12.75", true},
		{" 5 ", "5", true},
		{"-5", "", false},
		{"0", "", false},
		{"", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"0.01", "0.01", true},
		{"1e3", "1000", true},
		{"1e50000000", "", false},
		{"1e-20000", "", false},
		{"0.000000001", "", false},
		{"1000000000000000", "", false},
		{strings.Repeat("9", 100), "", false},
	}

	for _, tt := range tests {
		got, err := roulette.ParseInitialBalance(tt.input)
		if !tt.ok {
			if !errors.Is(err, roulette.ErrInvalidInitialBalance) {
				t.Errorf("ParseInitialBalance(%q) error = %v, want ErrInvalidInitialBalance", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseInitialBalance(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ParseInitialBalance(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}
