package validators

import (
	"strings"
	"testing"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.domain.org", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{"user@domain.", false},
		{"user name@example.com", false},
		{strings.Repeat("a", 250) + "@b.co", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"secret", true},
		{"123456", true},
		{"12345", false},
		{"", false},
		{"ññññññ", true}, // runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			if got := ValidPassword(tt.password); got != tt.want {
				t.Errorf("ValidPassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestValidDisplayName(t *testing.T) {
	if !ValidDisplayName("Ana García") {
		t.Error("expected a normal name to be valid")
	}
	if ValidDisplayName("   ") {
		t.Error("expected blank name to be invalid")
	}
	if ValidDisplayName(strings.Repeat("x", 81)) {
		t.Error("expected over-long name to be invalid")
	}
}

func TestValidItemName(t *testing.T) {
	if !ValidItemName("Milk") {
		t.Error("expected item name to be valid")
	}
	if ValidItemName("") {
		t.Error("expected empty item name to be invalid")
	}
	if ValidItemName(strings.Repeat("x", 121)) {
		t.Error("expected over-long item name to be invalid")
	}
}
