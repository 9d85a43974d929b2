package security

import (
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	dir := t.TempDir()

	if err := ValidatePathWithinDirectory(filepath.Join(dir, "out.csv"), dir); err != nil {
		t.Errorf("path inside dir rejected: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(dir, "sub", "out.csv"), dir); err != nil {
		t.Errorf("nested path inside dir rejected: %v", err)
	}
	if err := ValidatePathWithinDirectory(filepath.Join(dir, "..", "escape.csv"), dir); err == nil {
		t.Error("parent escape accepted")
	}
	if err := ValidatePathWithinDirectory("/etc/passwd", dir); err == nil {
		t.Error("absolute path outside dir accepted")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Match Scouting 2026", "Match_Scouting_2026"},
		{"weird///name", "weird_name"},
		{"..", "unknown"},
		{"", "unknown"},
		{"already-safe_name.v2", "already-safe_name.v2"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
