// Package jobboard implements the job board's core: job postings, the
// registration ledger, the moderation workflow and paginated search.
//
// Every operation takes the caller's auth.Identity (zero for anonymous),
// checks it against jobpolicy, and performs at most one atomic write to
// the job repository.
package jobboard

import (
	"context"
	"errors"

	jobstore "github.com/felix-ong/volunteer-board/internal/app/store/jobs"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// JobRepository is satisfied by jobstore.Store and memory.JobStore.
// Mutations are single-document atomic and report jobstore sentinels.
type JobRepository interface {
	Create(ctx context.Context, j models.Job) (models.Job, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Job, error)
	Replace(ctx context.Context, id primitive.ObjectID, j models.Job) (models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Register(ctx context.Context, jobID, userID primitive.ObjectID) (models.Job, error)
	Unregister(ctx context.Context, jobID, userID primitive.ObjectID) (models.Job, error)
	Approve(ctx context.Context, id primitive.ObjectID) (models.Job, error)
	Unapprove(ctx context.Context, id primitive.ObjectID, feedback string) (models.Job, error)
	DeleteUnapproved(ctx context.Context, id primitive.ObjectID) (models.Job, error)
	ListByOrganizer(ctx context.Context, name string) ([]models.Job, error)
	ListRegisteredBy(ctx context.Context, userID primitive.ObjectID) ([]models.Job, error)
	Query(ctx context.Context, q jobstore.Query) ([]models.Job, int64, error)
}

// UserDirectory resolves registrant ids to names. Satisfied by
// userstore.Store and memory.UserStore.
type UserDirectory interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// HistoryReader returns the recorded audit events of one job, newest
// first. Satisfied by audit.Store and memory.AuditStore.
type HistoryReader interface {
	ForJob(ctx context.Context, jobID primitive.ObjectID, limit int64) ([]audit.Event, error)
}

// Service is the job board core.
type Service struct {
	jobs    JobRepository
	users   UserDirectory
	audit   *auditlog.Logger
	history HistoryReader
	log     *zap.Logger
}

// New creates a Service. users may be nil, in which case registrants are
// returned without names. audit may be nil.
func New(jobs JobRepository, users UserDirectory, audit *auditlog.Logger, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{jobs: jobs, users: users, audit: audit, log: log}
}

// WithHistory sets where History reads audit events from.
func (s *Service) WithHistory(h HistoryReader) *Service {
	s.history = h
	return s
}

// ParseID parses a hex job id. A malformed id can never name a job, so it is
// reported as not found.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("job", s)
	}
	return id, nil
}

// storeErr maps repository sentinels onto the apperr taxonomy. Anything
// else is returned unchanged and surfaces as an internal error.
func storeErr(err error, id primitive.ObjectID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jobstore.ErrNotFound):
		return apperr.NotFound("job", id.Hex())
	case errors.Is(err, jobstore.ErrAlreadyRegistered):
		return apperr.Conflict("already registered for this job")
	case errors.Is(err, jobstore.ErrNotApproved):
		return apperr.Conflict("job is not open for registration until it is approved")
	case errors.Is(err, jobstore.ErrAlreadyApproved):
		return apperr.Conflict("job is already approved")
	case errors.Is(err, userstore.ErrNotFound):
		return apperr.NotFound("user", id.Hex())
	}
	return err
}
