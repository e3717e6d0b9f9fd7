// internal/app/system/messages/messages.go
package messages

import "strings"

// ForError maps a raw auth/store error to the message shown to the user.
// Matching is substring-based against the provider's error text; anything
// unrecognized falls through to a generic message that keeps the raw text
// so support can still diagnose it.
func ForError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "email-already") || strings.Contains(msg, "already registered"):
		return "That email is already registered"
	case strings.Contains(msg, "invalid-email") || strings.Contains(msg, "invalid email"):
		return "That email address doesn't look right"
	case strings.Contains(msg, "weak-password") || strings.Contains(msg, "weak password"):
		return "Password is too weak; use at least 6 characters"
	case strings.Contains(msg, "password"):
		return "Incorrect password"
	case strings.Contains(msg, "user"):
		return "No account found for that email"
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection"):
		return "Connection error. Check your internet and try again"
	default:
		return "Error: " + err.Error()
	}
}
