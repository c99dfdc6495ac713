package jobs

import (
	"context"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/features/errors"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
)

type countResponse struct {
	Registrations int `json:"registrations"`
}

// ListRegistrations handles GET /api/jobs/{id}/registrations (author or admin).
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	regs, err := h.Svc.ListRegistrants(ctx, caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, regs)
}

// Register handles POST /api/jobs/{id}/registrations for the calling student.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Svc.Register(ctx, caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusCreated, countResponse{Registrations: n})
}

// Unregister handles DELETE /api/jobs/{id}/registrations for the calling student.
func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Svc.Unregister(ctx, caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, countResponse{Registrations: n})
}
