// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/cartsync/internal/app/features/shared/respond"
	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/dalemusser/cartsync/internal/app/system/timeouts"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's account aggregate and the counter
// pair derived from it.
type Handler struct {
	Sync *sync.Factory
	Log  *zap.Logger
}

func NewHandler(factory *sync.Factory, logger *zap.Logger) *Handler {
	return &Handler{Sync: factory, Log: logger}
}

// HandleAccount returns the caller's account document.
func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Sync.ForPrincipal(p).Account(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "no account document")
		return
	}
	if err != nil {
		h.Log.Error("account read failed", zap.String("uid", p.UID), zap.Error(err))
		respond.SyncError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, acct)
}

// HandleStats returns just the (added, completed) counter pair. A missing
// account document reads as zeros, matching the live-stats stream.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Sync.ForPrincipal(p).Account(ctx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.JSON(w, http.StatusOK, models.Stats{})
			return
		}
		respond.SyncError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, models.Stats{
		Added:     acct.ProductsAdded,
		Completed: acct.ProductsCompleted,
	})
}
