package language

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		// 3-letter codes convert
		{"eng", "en"},
		{"spa", "es"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"jpn", "ja"},
		{"chi", "zh"},
		{"dut", "nl"},
		// Tags keep only the base language
		{"pt-BR", "pt"},
		{"pt_br", "pt"},
		{"zh-Hant", "zh"},
		// English names
		{"english", "en"},
		{"French", "fr"},
		{"JAPANESE", "ja"},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) failed: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"klingonese", "not a language"} {
		if _, err := Normalize(input); !errors.Is(err, ErrUnknown) {
			t.Errorf("Normalize(%q) error = %v, want ErrUnknown", input, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"deu", "German"},
		{"pt-BR", "Portuguese"},
		{"klingonese", "klingonese"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
