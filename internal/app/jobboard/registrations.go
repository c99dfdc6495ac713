package jobboard

import (
	"context"

	"github.com/felix-ong/volunteer-board/internal/app/policy/jobpolicy"
	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/metrics"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Register adds the calling student to an approved job and returns the new
// registration count. A second registration by the same student is a
// Conflict.
func (s *Service) Register(ctx context.Context, ident auth.Identity, jobID primitive.ObjectID) (int, error) {
	if err := jobpolicy.Check(jobpolicy.ActionRegister, ident); err != nil {
		return 0, err
	}
	j, err := s.jobs.Register(ctx, jobID, ident.UserID)
	metrics.RecordRegistration("register", err)
	if err != nil {
		return 0, storeErr(err, jobID)
	}
	s.audit.JobEvent(ctx, audit.EventJobRegistered, ident.UserID, j, nil)
	return len(j.Registrations), nil
}

// Unregister removes the calling student from a job and returns the new
// registration count. Unregistering when not registered succeeds and
// changes nothing.
func (s *Service) Unregister(ctx context.Context, ident auth.Identity, jobID primitive.ObjectID) (int, error) {
	if err := jobpolicy.Check(jobpolicy.ActionRegister, ident); err != nil {
		return 0, err
	}
	j, err := s.jobs.Unregister(ctx, jobID, ident.UserID)
	metrics.RecordRegistration("unregister", err)
	if err != nil {
		return 0, storeErr(err, jobID)
	}
	s.audit.JobEvent(ctx, audit.EventJobUnregistered, ident.UserID, j, nil)
	return len(j.Registrations), nil
}

// ListRegistrants returns a job's registrants in registration order. Users
// that still exist carry their name and email.
func (s *Service) ListRegistrants(ctx context.Context, ident auth.Identity, jobID primitive.ObjectID) ([]models.Registrant, error) {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionViewRegistrants, ident, j); err != nil {
		return nil, err
	}

	out := make([]models.Registrant, len(j.Registrations))
	for i, id := range j.Registrations {
		out[i] = models.Registrant{UserID: id}
	}
	if s.users == nil || len(out) == 0 {
		return out, nil
	}

	users, err := s.users.GetByIDs(ctx, j.Registrations)
	if err != nil {
		// Names are a convenience; the ids alone are still a correct answer.
		s.log.Warn("registrant lookup failed", zap.String("job_id", jobID.Hex()), zap.Error(err))
		return out, nil
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for i := range out {
		if u, ok := byID[out[i].UserID]; ok {
			out[i].Name = u.Name
			out[i].Email = u.Email
		}
	}
	return out, nil
}

// ListRegisteredJobs returns the jobs userID is registered for, newest first.
func (s *Service) ListRegisteredJobs(ctx context.Context, userID primitive.ObjectID) ([]models.Job, error) {
	jobs, err := s.jobs.ListRegisteredBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}
