package service

import (
	"strings"
	"testing"
)

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane_doe"},
		{"  jane.doe  ", "jane_doe"},
		{"Jörg", "jrg"},
		{"___", ""},
		{"UPPER-case_9", "upper-case_9"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := sanitizeUsername(tt.in); got != tt.want {
			t.Errorf("sanitizeUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultAvatarURL(t *testing.T) {
	got := defaultAvatarURL("jane doe")
	if !strings.Contains(got, "ui-avatars.com") {
		t.Errorf("expected ui-avatars URL, got %q", got)
	}
	if strings.Contains(got, " ") {
		t.Errorf("expected escaped URL, got %q", got)
	}
}

func TestIDGenerators(t *testing.T) {
	if len(newUUID()) != 36 {
		t.Errorf("expected 36-char uuid, got %q", newUUID())
	}
	if len(newULID()) != 26 {
		t.Errorf("expected 26-char ulid, got %q", newULID())
	}
	if newULID() == newULID() {
		t.Error("expected unique ulids")
	}
}
