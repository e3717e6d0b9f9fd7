// internal/app/features/authn/handler.go
package authn

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/cartsync/internal/app/features/shared/respond"
	"github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/dalemusser/cartsync/internal/app/system/limits"
	"github.com/dalemusser/cartsync/internal/app/system/ratelimit"
	"github.com/dalemusser/cartsync/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves registration, login, logout, and the current-session
// probe. It owns no auth logic itself: credentials go straight to the sync
// repository, and the cookie session only records what the repository
// returned.
type Handler struct {
	Sync       *sync.Factory
	SessionMgr *auth.SessionManager
	Limits     *ratelimit.CredentialLimiter
	Log        *zap.Logger
}

func NewHandler(factory *sync.Factory, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Sync:       factory,
		SessionMgr: sessionMgr,
		Limits:     ratelimit.NewCredentialLimiter(),
		Log:        logger,
	}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates the credential and the account aggregate, then
// signs the new principal into the cookie session.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		respond.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Sync.Session().Register(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.Log.Info("registration rejected", zap.String("email", req.Email), zap.Error(err))
		respond.SyncError(w, err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, p); err != nil {
		h.Log.Error("session save failed after registration", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "session save failed")
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

// HandleLogin verifies the credential pair and records the session.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if ok, reason := h.Limits.Check(r, req.Email); !ok {
		respond.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Sync.Session().Login(ctx, req.Email, req.Password)
	if err != nil {
		respond.SyncError(w, err)
		return
	}
	h.Limits.ResetEmail(req.Email)

	if err := h.SessionMgr.SignIn(w, r, p); err != nil {
		h.Log.Error("session save failed after login", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "session save failed")
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// HandleLogout drops the cookie session. Safe to call signed out.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("session clear failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "sign-out failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe reports the signed-in principal, if any.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not signed in")
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
