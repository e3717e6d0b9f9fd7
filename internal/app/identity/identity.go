// internal/app/identity/identity.go
package identity

import (
	"context"
	"errors"
)

// Principal is the authenticated identity performing an action: the opaque
// stable uid plus the profile fields the provider returns with it.
type Principal struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Provider authenticates principals by email+password and yields uids.
// The Sync Repository depends on this interface, not on a concrete client,
// so tests can substitute a fake.
type Provider interface {
	// Register creates a new credential and returns the minted principal.
	Register(ctx context.Context, email, password, displayName string) (Principal, error)

	// Login verifies the credential pair and returns the principal.
	Login(ctx context.Context, email, password string) (Principal, error)
}

// Sentinel errors. The message text is part of the contract: the user-facing
// message layer matches on the email-already / invalid-email / weak-password
// / password / user substrings.
var (
	ErrEmailTaken         = errors.New("identity: email-already-in-use")
	ErrInvalidEmail       = errors.New("identity: invalid-email")
	ErrWeakPassword       = errors.New("identity: weak-password")
	ErrInvalidCredentials = errors.New("identity: wrong password or unknown user")
)
