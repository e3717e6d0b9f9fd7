// internal/app/features/list/routes.go
package list

import (
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/search", h.HandleSearch)
	r.Post("/", h.HandleAdd)
	// chi matches the static "/completed" segment ahead of "/{id}".
	r.Delete("/completed", h.HandleClearCompleted)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
