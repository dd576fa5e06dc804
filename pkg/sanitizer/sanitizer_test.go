package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Sea view suite  ", "Sea view suite"},
		{"multiple spaces between words", "Sea    view", "Sea view"},
		{"tabs and newlines", "Sea\t\nview", "Sea view"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew characters", " חדר זוגי ", "חדר זוגי"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Double room", "Double room"},
		{"control characters dropped", "Double\x00 room\x07", "Double room"},
		{"only control characters", "\x00\x01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeDescription(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeDescription(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeDescription(got); again != got {
				t.Errorf("not idempotent: %q then %q", got, again)
			}
		})
	}
}

func TestSanitizeNumber(t *testing.T) {
	if got := SanitizeNumber(" 100.50 "); got != "100.50" {
		t.Errorf("SanitizeNumber = %q", got)
	}
}
