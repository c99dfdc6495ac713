package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	jobstore "github.com/felix-ong/volunteer-board/internal/app/store/jobs"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts test documents straight into a database.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. The password hash is a
// placeholder; use the users store when a test needs to log in.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Role:         role,
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateJob inserts a job authored by createdBy. Fields left blank on tmpl
// get usable defaults.
func (f *Fixtures) CreateJob(ctx context.Context, createdBy primitive.ObjectID, tmpl models.Job) models.Job {
	f.t.Helper()

	job := SampleJob(tmpl)
	job.CreatedByID = createdBy
	if _, err := f.db.Collection("jobs").InsertOne(ctx, job); err != nil {
		f.t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

// SampleJob fills the required fields of tmpl that are blank and computes
// the folded search columns.
func SampleJob(tmpl models.Job) models.Job {
	j := tmpl
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.Title == "" {
		j.Title = "Beach Cleanup"
	}
	if j.Purpose == "" {
		j.Purpose = "Keep the coast clean"
	}
	if j.Organizer == "" {
		j.Organizer = "Green Earth"
	}
	if len(j.Categories) == 0 {
		j.Categories = []string{"Environment"}
	}
	if j.Hours == 0 {
		j.Hours = 3
	}
	if j.Suitability == nil {
		j.Suitability = []string{}
	}
	if j.Dates == nil {
		j.Dates = []time.Time{}
	}
	if j.Registrations == nil {
		j.Registrations = []primitive.ObjectID{}
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = j.CreatedAt
	}
	jobstore.Fold(&j)
	return j
}
