package jobs

import (
	"context"
	"net/http"

	"github.com/felix-ong/volunteer-board/internal/app/features/errors"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
)

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// job plus its derived moderation state.
type jobView struct {
	models.Job
	Status string `json:"status"`
}

func jobResponse(j models.Job) jobView {
	return jobView{Job: j, Status: j.State()}
}

// Approve handles PATCH /api/jobs/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ident := caller(r)
	j, err := h.Svc.Approve(ctx, ident, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, jobResponse(jobboard.Present(ident, j)))
}

// Unapprove handles PATCH /api/jobs/{id}/unapprove with body
// { "feedback": "…" }.
func (h *Handler) Unapprove(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req feedbackRequest
	if err := errors.Decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ident := caller(r)
	j, err := h.Svc.Unapprove(ctx, ident, id, req.Feedback)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, jobResponse(jobboard.Present(ident, j)))
}

// Reject handles DELETE /api/jobs/{id}/reject with body { "reason": "…" }.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req rejectRequest
	if err := errors.Decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.Reject(ctx, caller(r), id, req.Reason); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/jobs/{id}/history (admins). Works for rejected
// jobs too, since the trail outlives the document.
//
// Response: { "events": [ … newest first … ] }
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := h.Svc.History(ctx, caller(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.JSON(w, http.StatusOK, map[string]any{"events": events})
}
