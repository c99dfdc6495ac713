// Package memory holds in-memory implementations of the job and user
// stores. They are safe for concurrent use and are intended for tests and
// local development (store_backend=memory).
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	jobstore "github.com/felix-ong/volunteer-board/internal/app/store/jobs"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobStore mirrors jobstore.Store. Each method holds the lock for its whole
// check-and-write, which gives the same single-document atomicity.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[primitive.ObjectID]models.Job
	now  func() time.Time
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[primitive.ObjectID]models.Job),
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func cloneJob(j models.Job) models.Job {
	j.Categories = append([]string(nil), j.Categories...)
	j.Suitability = append([]string(nil), j.Suitability...)
	j.Dates = append([]time.Time(nil), j.Dates...)
	j.Registrations = append([]primitive.ObjectID{}, j.Registrations...)
	if j.FeedbackAt != nil {
		t := *j.FeedbackAt
		j.FeedbackAt = &t
	}
	return j
}

func (s *JobStore) Create(_ context.Context, j models.Job) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now()
	j.ID = primitive.NewObjectID()
	j.IsApproved = false
	j.Feedback = ""
	j.FeedbackAt = nil
	j.Registrations = []primitive.ObjectID{}
	j.CreatedAt = t
	j.UpdatedAt = t
	jobstore.Fold(&j)

	s.jobs[j.ID] = cloneJob(j)
	return cloneJob(j), nil
}

func (s *JobStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	return cloneJob(j), nil
}

func (s *JobStore) Replace(_ context.Context, id primitive.ObjectID, in models.Job) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}

	in = cloneJob(in)
	in.ID = cur.ID
	in.Registrations = cur.Registrations
	in.IsApproved = cur.IsApproved
	in.Feedback = cur.Feedback
	in.FeedbackAt = cur.FeedbackAt
	in.CreatedByID = cur.CreatedByID
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = s.now()
	jobstore.Fold(&in)

	s.jobs[id] = in
	return cloneJob(in), nil
}

func (s *JobStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return jobstore.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *JobStore) Register(_ context.Context, jobID, userID primitive.ObjectID) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	if !j.IsApproved {
		return models.Job{}, jobstore.ErrNotApproved
	}
	if j.IsRegistered(userID) {
		return cloneJob(j), jobstore.ErrAlreadyRegistered
	}
	j.Registrations = append(append([]primitive.ObjectID{}, j.Registrations...), userID)
	j.UpdatedAt = s.now()
	s.jobs[jobID] = j
	return cloneJob(j), nil
}

func (s *JobStore) Unregister(_ context.Context, jobID, userID primitive.ObjectID) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	kept := make([]primitive.ObjectID, 0, len(j.Registrations))
	for _, id := range j.Registrations {
		if id != userID {
			kept = append(kept, id)
		}
	}
	j.Registrations = kept
	j.UpdatedAt = s.now()
	s.jobs[jobID] = j
	return cloneJob(j), nil
}

func (s *JobStore) Approve(_ context.Context, id primitive.ObjectID) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	if j.IsApproved {
		return models.Job{}, jobstore.ErrAlreadyApproved
	}
	j.IsApproved = true
	j.Feedback = ""
	j.FeedbackAt = nil
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return cloneJob(j), nil
}

func (s *JobStore) Unapprove(_ context.Context, id primitive.ObjectID, feedback string) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	t := s.now()
	j.IsApproved = false
	j.Feedback = feedback
	j.FeedbackAt = &t
	j.UpdatedAt = t
	s.jobs[id] = j
	return cloneJob(j), nil
}

func (s *JobStore) DeleteUnapproved(_ context.Context, id primitive.ObjectID) (models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, jobstore.ErrNotFound
	}
	if j.IsApproved {
		return models.Job{}, jobstore.ErrAlreadyApproved
	}
	delete(s.jobs, id)
	return j, nil
}

func (s *JobStore) ListByOrganizer(_ context.Context, name string) ([]models.Job, error) {
	folded := text.Fold(name)
	return s.collect(func(j models.Job) bool { return j.OrganizerCI == folded }), nil
}

func (s *JobStore) ListRegisteredBy(_ context.Context, userID primitive.ObjectID) ([]models.Job, error) {
	return s.collect(func(j models.Job) bool { return j.IsRegistered(userID) }), nil
}

func (s *JobStore) Query(_ context.Context, q jobstore.Query) ([]models.Job, int64, error) {
	all := s.collect(func(j models.Job) bool {
		return j.IsApproved == q.Approved && q.Filter.Matches(j)
	})
	total := int64(len(all))
	out := []models.Job{}
	if q.Skip >= total {
		return out, total, nil
	}
	end := q.Skip + q.Limit
	if q.Limit <= 0 || end > total {
		end = total
	}
	return append(out, all[q.Skip:end]...), total, nil
}

// collect returns clones of the matching jobs, newest first with ties
// broken by id descending.
func (s *JobStore) collect(match func(models.Job) bool) []models.Job {
	s.mu.RLock()
	out := []models.Job{}
	for _, j := range s.jobs {
		if match(j) {
			out = append(out, cloneJob(j))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return bytes.Compare(out[a].ID[:], out[b].ID[:]) > 0
	})
	return out
}

// Put stores j as given, for seeding tests and fixtures.
func (s *JobStore) Put(j models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j.Registrations == nil {
		j.Registrations = []primitive.ObjectID{}
	}
	jobstore.Fold(&j)
	s.jobs[j.ID] = cloneJob(j)
}
