// internal/app/system/validators/validators.go
package validators

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLen mirrors the identity provider's weak-password floor.
	MinPasswordLen = 6

	maxEmailLen       = 254
	maxDisplayNameLen = 80
	maxItemNameLen    = 120
	maxItemFieldLen   = 60
)

// ValidEmail does a light structural check: one "@", a non-empty local
// part, and a dot in the domain. Real validation happens when mail is
// delivered; this just catches obvious typos before they reach the store.
func ValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLen {
		return false
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.IndexByte(domain, '.') <= 0 || strings.HasSuffix(domain, ".") {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n")
}

// ValidPassword reports whether a password meets the minimum length.
func ValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLen
}

// ValidDisplayName requires a non-blank name within the display limit.
func ValidDisplayName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxDisplayNameLen
}

// ValidItemName requires a non-blank item name within the list limit.
func ValidItemName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= maxItemNameLen
}

// ValidItemField bounds the optional quantity/category free-text fields.
func ValidItemField(v string) bool {
	return utf8.RuneCountInString(v) <= maxItemFieldLen
}
