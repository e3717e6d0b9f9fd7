// internal/app/features/live/routes.go
package live

import (
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/items", h.HandleItems)
	r.Get("/stats", h.HandleStats)
	r.Get("/account", h.HandleAccount)
	return r
}
