// internal/app/features/users/routes.go
package users

import (
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/me", h.Me)
		pr.Get("/me/jobs", h.MyJobs)
	})

	return r
}
