// internal/app/sync/errors.go
package sync

import "errors"

// The repository sorts every failure into one of three buckets so the
// presentation layer can decide between "fix your input", "sign in", and
// "try again later" without inspecting raw store errors.

// ErrNotSignedIn is the cause carried by AuthError when an operation that
// needs a principal runs without one.
var ErrNotSignedIn = errors.New("no principal signed in")

// AuthError covers bad credentials, unauthenticated callers, and
// provider-side validation rejections (weak password, malformed email,
// email already registered).
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError covers caller mistakes the repository catches before any
// store call: a missing store-assigned identifier, an empty required field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// StoreError covers any underlying document-store failure: connectivity,
// permissions, quota.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
