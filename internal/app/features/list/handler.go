// internal/app/features/list/handler.go
package list

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/cartsync/internal/app/features/shared/respond"
	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/dalemusser/cartsync/internal/app/system/limits"
	"github.com/dalemusser/cartsync/internal/app/system/timeouts"
	"github.com/dalemusser/cartsync/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the shared shopping list: snapshot reads, search, and the
// four mutations. Every route sits behind RequireSignedIn, so a missing
// principal here is a programming error, not a user state.
type Handler struct {
	Sync *sync.Factory
	Log  *zap.Logger
}

func NewHandler(factory *sync.Factory, logger *zap.Logger) *Handler {
	return &Handler{Sync: factory, Log: logger}
}

// repo binds the request's principal to a fresh session repository.
func (h *Handler) repo(r *http.Request) (*sync.Repository, bool) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return nil, false
	}
	return h.Sync.ForPrincipal(p), true
}

type addItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

type updateItemRequest struct {
	Completed bool `json:"completed"`
}

// HandleList returns one side of the list: ?completed=true for the done
// items, anything else (or nothing) for the pending ones.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	completed := r.URL.Query().Get("completed") == "true"
	items, err := repo.Items(ctx, completed)
	if err != nil {
		h.Log.Error("item list failed", zap.Bool("completed", completed), zap.Error(err))
		respond.SyncError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// HandleSearch returns items whose name starts with ?q=, case-folded.
// An empty query returns an empty slice rather than the whole list.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		respond.JSON(w, http.StatusOK, []models.Item{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := repo.SearchItems(ctx, q)
	if err != nil {
		h.Log.Error("item search failed", zap.Error(err))
		respond.SyncError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, items)
}

// HandleAdd creates a pending item attributed to the caller.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := repo.AddItem(ctx, models.Item{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
	})
	if err != nil {
		respond.SyncError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// HandleUpdate toggles an item's completion flag.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := repo.UpdateItem(ctx, models.Item{ID: id, Completed: req.Completed}); err != nil {
		respond.SyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes one item by id.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := repo.DeleteItem(ctx, models.Item{ID: id}); err != nil {
		respond.SyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearCompleted deletes every completed item for all users and
// winds back each completer's counter.
func (h *Handler) HandleClearCompleted(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := repo.ClearCompleted(ctx); err != nil {
		h.Log.Error("clear completed failed", zap.Error(err))
		respond.SyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
