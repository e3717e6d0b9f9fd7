// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleAccount)
	r.Get("/stats", h.HandleStats)
	return r
}
