// internal/app/features/shared/respond/respond.go
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/cartsync/internal/app/identity"
	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/messages"
)

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error envelope.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// SyncError translates a repository error into an HTTP status plus the
// user-facing message. Raw store detail stays on the server; the client
// only sees the message layer's text.
func SyncError(w http.ResponseWriter, err error) {
	switch {
	case sync.IsValidation(err):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrEmailTaken):
		Error(w, http.StatusConflict, messages.ForError(err))
	case sync.IsAuth(err):
		Error(w, http.StatusUnauthorized, messages.ForError(err))
	case sync.IsStore(err):
		Error(w, http.StatusBadGateway, messages.ForError(err))
	default:
		Error(w, http.StatusInternalServerError, messages.ForError(err))
	}
}
