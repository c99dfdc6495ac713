package jobboard

import (
	"context"
	"strings"

	"github.com/felix-ong/volunteer-board/internal/app/policy/jobpolicy"
	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/htmlsanitize"
	"github.com/felix-ong/volunteer-board/internal/app/system/metrics"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxNoteLen = 2000

// Approve publishes a pending or unapproved job and clears its feedback.
func (s *Service) Approve(ctx context.Context, ident auth.Identity, id primitive.ObjectID) (models.Job, error) {
	if err := jobpolicy.Check(jobpolicy.ActionModerate, ident); err != nil {
		return models.Job{}, err
	}
	j, err := s.jobs.Approve(ctx, id)
	metrics.RecordModeration("approve", err)
	if err != nil {
		return models.Job{}, storeErr(err, id)
	}
	s.log.Info("job approved", zap.String("job_id", id.Hex()), zap.String("actor", ident.UserID.Hex()))
	s.audit.Moderation(ctx, audit.EventJobApproved, ident.UserID, j, "")
	return j, nil
}

// Unapprove withdraws a job from the public listing and records feedback for
// its author. Allowed from any state; the latest feedback replaces earlier
// feedback.
func (s *Service) Unapprove(ctx context.Context, ident auth.Identity, id primitive.ObjectID, feedback string) (models.Job, error) {
	if err := jobpolicy.Check(jobpolicy.ActionModerate, ident); err != nil {
		return models.Job{}, err
	}
	feedback, err := note("feedback", feedback)
	if err != nil {
		return models.Job{}, err
	}
	j, err := s.jobs.Unapprove(ctx, id, feedback)
	metrics.RecordModeration("unapprove", err)
	if err != nil {
		return models.Job{}, storeErr(err, id)
	}
	s.log.Info("job unapproved", zap.String("job_id", id.Hex()), zap.String("actor", ident.UserID.Hex()))
	s.audit.Moderation(ctx, audit.EventJobUnapproved, ident.UserID, j, feedback)
	return j, nil
}

// Reject deletes a job that is not approved. The reason is kept in the
// audit trail. An approved job must be unapproved first.
func (s *Service) Reject(ctx context.Context, ident auth.Identity, id primitive.ObjectID, reason string) error {
	if err := jobpolicy.Check(jobpolicy.ActionModerate, ident); err != nil {
		return err
	}
	reason, err := note("reason", reason)
	if err != nil {
		return err
	}
	j, err := s.jobs.DeleteUnapproved(ctx, id)
	metrics.RecordModeration("reject", err)
	if err != nil {
		return storeErr(err, id)
	}
	s.log.Info("job rejected", zap.String("job_id", id.Hex()), zap.String("actor", ident.UserID.Hex()))
	s.audit.Moderation(ctx, audit.EventJobRejected, ident.UserID, j, reason)
	return nil
}

func note(field, raw string) (string, error) {
	n := strings.TrimSpace(htmlsanitize.StripTags(raw))
	if n == "" {
		return "", apperr.ValidationFailed(field, field+" is required")
	}
	if len(n) > maxNoteLen {
		return "", apperr.ValidationFailed(field, field+" is too long")
	}
	return n, nil
}

const historyLimit = 100

// History returns the audit trail of a job, newest first. It stays readable
// after the job is rejected or deleted. Admins only.
func (s *Service) History(ctx context.Context, ident auth.Identity, id primitive.ObjectID) ([]audit.Event, error) {
	if err := jobpolicy.Check(jobpolicy.ActionModerate, ident); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []audit.Event{}, nil
	}
	events, err := s.history.ForJob(ctx, id, historyLimit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}
