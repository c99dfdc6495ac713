// internal/app/features/jobs/handler.go
package jobs

import (
	"context"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/features/errors"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/paging"
	"github.com/felix-ong/volunteer-board/internal/app/system/search"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the /api/jobs JSON endpoints.
type Handler struct {
	Svc          *jobboard.Service
	DefaultLimit int
	Log          *zap.Logger
}

// NewHandler creates a jobs handler. defaultLimit is the page size used
// when a listing request has no "limit".
func NewHandler(svc *jobboard.Service, defaultLimit int, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, DefaultLimit: defaultLimit, Log: logger}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.Write(w, r, h.Log, err)
}

// caller returns the identity set by auth.LoadIdentity, or the zero
// identity for anonymous requests.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.CurrentIdentity(r)
	return id
}

func jobID(r *http.Request) (primitive.ObjectID, error) {
	return jobboard.ParseID(chi.URLParam(r, "id"))
}

func (h *Handler) listing(w http.ResponseWriter, r *http.Request, list func(context.Context, search.Filter, paging.Params) (jobboard.Page, error)) {
	p, err := paging.Parse(r, h.DefaultLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pg, err := list(ctx, search.FromRequest(r), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, pg)
}

// List handles GET /api/jobs.
//
//	?page=1&limit=10&search=beach&categories=Environment,Community
//
// Response: { "data":[…], "page":1, "limit":10, "pageCount":1, "total":0 }
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.listing(w, r, h.Svc.ListApproved)
}

// ListUnapproved handles GET /api/jobs/unapproved (admins).
func (h *Handler) ListUnapproved(w http.ResponseWriter, r *http.Request) {
	ident := caller(r)
	h.listing(w, r, func(ctx context.Context, f search.Filter, p paging.Params) (jobboard.Page, error) {
		return h.Svc.ListUnapproved(ctx, ident, f, p)
	})
}

// Categories handles GET /api/jobs/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	errors.JSON(w, http.StatusOK, h.Svc.Categories())
}

// Suitability handles GET /api/jobs/suitability.
func (h *Handler) Suitability(w http.ResponseWriter, r *http.Request) {
	errors.JSON(w, http.StatusOK, h.Svc.SuitabilityOptions())
}

// ListByOrganizer handles GET /api/jobs/organizer/{name}.
func (h *Handler) ListByOrganizer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ident := caller(r)
	jobs, err := h.Svc.ListByOrganizer(ctx, ident, chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range jobs {
		jobs[i] = jobboard.Present(ident, jobs[i])
	}
	errors.JSON(w, http.StatusOK, jobs)
}

// Get handles GET /api/jobs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	j, err := h.Svc.View(ctx, caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, jobResponse(j))
}

// Create handles POST /api/jobs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in jobboard.JobInput
	if err := errors.Decode(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ident := caller(r)
	j, err := h.Svc.Create(ctx, ident, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusCreated, jobResponse(jobboard.Present(ident, j)))
}

// Update handles PATCH /api/jobs/{id}. Only the fields present in the body
// change, e.g. { "title", "purpose", "categories" }.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var patch jobboard.JobPatch
	if err := errors.Decode(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ident := caller(r)
	j, err := h.Svc.Update(ctx, ident, id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, jobResponse(jobboard.Present(ident, j)))
}

// Delete handles DELETE /api/jobs/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.Delete(ctx, caller(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
