// internal/app/features/jobs/routes.go
package jobs

import (
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/jobs. Listing and reading are
// public; everything else needs a signed-in caller, and the service applies
// the per-role and author rules.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Get("/suitability", h.Suitability)
	r.Get("/{id}", h.Get)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.Create)
		pr.Get("/unapproved", h.ListUnapproved)
		pr.Get("/organizer/{name}", h.ListByOrganizer)

		pr.Patch("/{id}", h.Update)
		pr.Delete("/{id}", h.Delete)

		pr.Patch("/{id}/approve", h.Approve)
		pr.Patch("/{id}/unapprove", h.Unapprove)
		pr.Delete("/{id}/reject", h.Reject)
		pr.Get("/{id}/history", h.History)

		pr.Get("/{id}/registrations", h.ListRegistrations)
		pr.Post("/{id}/registrations", h.Register)
		pr.Delete("/{id}/registrations", h.Unregister)
	})

	return r
}
