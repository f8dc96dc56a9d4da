package titles

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"The Daily", "the daily"},
		{"THE DAILY", "the daily"},
		{"  The Daily  ", "the daily"},
		{"The\tDaily", "the daily"},
		{"The   Daily\n", "the daily"},
		{"Café com Podcast", "café com podcast"},
		{"", ""},
		{"   ", ""},
		{"SmartLess", "smartless"},
	}

	for _, tt := range tests {
		result := Normalize(tt.input)
		if result != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizeCaseAndWhitespaceVariantsAgree(t *testing.T) {
	variants := [][2]string{
		{"The Daily ", "the daily"},
		{"CRIME   JUNKIE", "Crime Junkie"},
		{" Morbid", "MORBID  "},
		{"This American\tLife", "this  american life"},
	}

	for _, pair := range variants {
		if Normalize(pair[0]) != Normalize(pair[1]) {
			t.Errorf("expected %q and %q to share a normalized key, got %q and %q",
				pair[0], pair[1], Normalize(pair[0]), Normalize(pair[1]))
		}
	}
}
