package jobboard

import (
	"context"
	"strings"

	"github.com/felix-ong/volunteer-board/internal/app/policy/jobpolicy"
	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Create validates in and stores it as a new pending job authored by ident.
func (s *Service) Create(ctx context.Context, ident auth.Identity, in JobInput) (models.Job, error) {
	if err := jobpolicy.Check(jobpolicy.ActionCreate, ident); err != nil {
		return models.Job{}, err
	}
	j, err := in.toJob()
	if err != nil {
		return models.Job{}, err
	}
	if j.Organizer == "" {
		j.Organizer = ident.Name
	}
	j.CreatedByID = ident.UserID

	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return models.Job{}, err
	}
	s.log.Info("job created",
		zap.String("job_id", created.ID.Hex()),
		zap.String("created_by", ident.UserID.Hex()))
	s.audit.JobEvent(ctx, audit.EventJobCreated, ident.UserID, created, nil)
	return created, nil
}

// Get returns the job regardless of its approval state.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Job, error) {
	j, err := s.jobs.GetByID(ctx, id)
	return j, storeErr(err, id)
}

// View returns the job as ident may see it. Jobs that are not approved are
// reported as not found to anyone but their author and admins, and the
// registration list is only kept for those same callers.
func (s *Service) View(ctx context.Context, ident auth.Identity, id primitive.ObjectID) (models.Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	if !j.IsApproved && !jobpolicy.IsOwnerOrAdmin(ident, j) {
		return models.Job{}, apperr.NotFound("job", id.Hex())
	}
	return Present(ident, j), nil
}

// Present fills RegistrationCount and drops the registration list unless
// ident authored the job or is an admin.
func Present(ident auth.Identity, j models.Job) models.Job {
	j.RegistrationCount = len(j.Registrations)
	if !jobpolicy.IsOwnerOrAdmin(ident, j) {
		j.Registrations = nil
	}
	return j
}

// Update merges patch onto the stored job, validates the result with the
// same rules as Create and writes the descriptive fields. Approval state,
// feedback and registrations are kept.
func (s *Service) Update(ctx context.Context, ident auth.Identity, id primitive.ObjectID, patch JobPatch) (models.Job, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return models.Job{}, err
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionEdit, ident, cur); err != nil {
		return models.Job{}, err
	}
	j, err := patch.applyTo(cur).toJob()
	if err != nil {
		return models.Job{}, err
	}

	updated, err := s.jobs.Replace(ctx, id, j)
	if err != nil {
		return models.Job{}, storeErr(err, id)
	}
	s.audit.JobEvent(ctx, audit.EventJobUpdated, ident.UserID, updated, nil)
	return updated, nil
}

// Delete removes a job together with its registrations.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, id primitive.ObjectID) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionDelete, ident, cur); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return storeErr(err, id)
	}
	s.log.Info("job deleted",
		zap.String("job_id", id.Hex()),
		zap.String("actor", ident.UserID.Hex()),
		zap.Int("registrations", len(cur.Registrations)))
	s.audit.JobEvent(ctx, audit.EventJobDeleted, ident.UserID, cur, nil)
	return nil
}

// ListByOrganizer returns every job, approved or not, whose organizer equals
// name ignoring case and diacritics. Newest first.
func (s *Service) ListByOrganizer(ctx context.Context, ident auth.Identity, name string) ([]models.Job, error) {
	if err := jobpolicy.Check(jobpolicy.ActionListOrganizer, ident); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ValidationFailed("organizer", "organizer name is required")
	}
	jobs, err := s.jobs.ListByOrganizer(ctx, name)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// Categories returns the fixed category enumeration.
func (s *Service) Categories() []string { return models.Categories() }

// SuitabilityOptions returns the fixed suitability enumeration.
func (s *Service) SuitabilityOptions() []string { return models.Suitability() }
