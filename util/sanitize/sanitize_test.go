package sanitize

import "testing"

func TestForFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "engine", "engine"},
		{"mixed case and spaces", "Raw Source", "raw-source"},
		{"special characters stripped", "commit/detector!", "commitdetector"},
		{"consecutive separators collapse", "a - - b", "a-b"},
		{"leading and trailing dashes trimmed", "-session-", "session"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForFilename(tt.input); got != tt.expected {
				t.Errorf("ForFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
