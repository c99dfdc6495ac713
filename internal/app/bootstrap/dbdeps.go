// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"

	"github.com/felix-ong/volunteer-board/internal/app/features/users"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/ratelimit"
	"github.com/felix-ong/volunteer-board/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// userRepository is what the app needs from a user store.
type userRepository interface {
	users.UserStore
	jobboard.UserDirectory
	SetRole(ctx context.Context, id primitive.ObjectID, role string) error
}

// auditRepository stores audit events and reads a job's trail back.
type auditRepository interface {
	auditlog.Sink
	jobboard.HistoryReader
}

// DBDeps holds database/back-end dependencies for the app.
// The Mongo fields are nil on the memory backend.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Jobs  jobboard.JobRepository
	Users userRepository
	Audit auditRepository

	AuthLimiter *ratelimit.AuthLimiter
	Gauges      *workers.BoardGauges // nil on the memory backend or when disabled
}
