package textutil

import (
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Episode 12", "Episode 12"},
		{"slashes", "News/Weather: Update", "News-Weather- Update"},
		{"stripped", "What? <Really> \"Yes\"|", "What Really Yes"},
		{"trailing dots", "Finale...", "Finale"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.in); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameNormalizesUnicode(t *testing.T) {
	composed := "Café"
	decomposed := "Café"
	if SanitizeFileName(composed) != SanitizeFileName(decomposed) {
		t.Fatalf("expected NFC normalization to unify %q and %q", composed, decomposed)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{300 * time.Millisecond, "1s"},
		{42 * time.Second, "42s"},
		{2*time.Minute + 5*time.Second, "2m5s"},
		{time.Hour + 30*time.Second, "1h0m30s"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
