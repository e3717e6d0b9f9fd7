package sync

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	authErr := &AuthError{Err: ErrNotSignedIn}
	valErr := &ValidationError{Msg: "item is missing its store-assigned id"}
	storeErr := &StoreError{Op: "insert item", Err: errors.New("connection reset")}

	if !IsAuth(authErr) || IsAuth(valErr) || IsAuth(storeErr) {
		t.Error("IsAuth misclassified")
	}
	if !IsValidation(valErr) || IsValidation(authErr) || IsValidation(storeErr) {
		t.Error("IsValidation misclassified")
	}
	if !IsStore(storeErr) || IsStore(authErr) || IsStore(valErr) {
		t.Error("IsStore misclassified")
	}
}

func TestErrorClassification_Wrapped(t *testing.T) {
	err := fmt.Errorf("add item: %w", &AuthError{Err: ErrNotSignedIn})
	if !IsAuth(err) {
		t.Error("expected IsAuth to see through wrapping")
	}
	if !errors.Is(err, ErrNotSignedIn) {
		t.Error("expected the cause to unwrap to ErrNotSignedIn")
	}
}

func TestStoreError_Message(t *testing.T) {
	err := &StoreError{Op: "clear completed", Err: errors.New("quota exceeded")}
	want := "store: clear completed: quota exceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
