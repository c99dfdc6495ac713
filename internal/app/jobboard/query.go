package jobboard

import (
	"context"

	"github.com/felix-ong/volunteer-board/internal/app/policy/jobpolicy"
	jobstore "github.com/felix-ong/volunteer-board/internal/app/store/jobs"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/paging"
	"github.com/felix-ong/volunteer-board/internal/app/system/search"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
)

// Page is one page of a job listing.
type Page struct {
	Data      []models.Job `json:"data"`
	Page      int          `json:"page"`
	Limit     int          `json:"limit"`
	PageCount int          `json:"pageCount"`
	Total     int64        `json:"total"`
}

// Query returns one page of jobs in the approved (approvedOnly) or the not
// approved partition, filtered by f, newest first. A page past the end has
// empty Data and the same PageCount.
func (s *Service) Query(ctx context.Context, f search.Filter, p paging.Params, approvedOnly bool) (Page, error) {
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	if err := f.Validate(); err != nil {
		return Page{}, err
	}
	jobs, total, err := s.jobs.Query(ctx, jobstore.Query{
		Filter:   f,
		Approved: approvedOnly,
		Skip:     p.Skip(),
		Limit:    int64(p.Limit),
	})
	if err != nil {
		return Page{}, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return Page{
		Data:      jobs,
		Page:      p.Page,
		Limit:     p.Limit,
		PageCount: paging.PageCount(total, p.Limit),
		Total:     total,
	}, nil
}

// ListApproved is the public listing. Registration lists are omitted.
func (s *Service) ListApproved(ctx context.Context, f search.Filter, p paging.Params) (Page, error) {
	pg, err := s.Query(ctx, f, p, true)
	if err != nil {
		return Page{}, err
	}
	for i := range pg.Data {
		pg.Data[i] = Present(auth.Identity{}, pg.Data[i])
	}
	return pg, nil
}

// ListUnapproved is the admin moderation queue: pending and unapproved jobs.
func (s *Service) ListUnapproved(ctx context.Context, ident auth.Identity, f search.Filter, p paging.Params) (Page, error) {
	if err := jobpolicy.Check(jobpolicy.ActionModerate, ident); err != nil {
		return Page{}, err
	}
	pg, err := s.Query(ctx, f, p, false)
	if err != nil {
		return Page{}, err
	}
	for i := range pg.Data {
		pg.Data[i] = Present(ident, pg.Data[i])
	}
	return pg, nil
}
