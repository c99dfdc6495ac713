package metricsstore

import (
	"context"

	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of board totals exported as gauges.
type Counts struct {
	ApprovedJobs   int64
	PendingJobs    int64 // unapproved, no feedback yet
	UnapprovedJobs int64 // sent back with feedback
	Registrations  int64
	UsersByRole    map[string]int64
}

// FetchBoardCounts returns the job and user totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchBoardCounts(ctx context.Context, db *mongo.Database) Counts {
	out := Counts{UsersByRole: make(map[string]int64)}
	jobs := db.Collection("jobs")

	if n, err := jobs.CountDocuments(ctx, bson.M{"is_approved": true}); err == nil {
		out.ApprovedJobs = n
	}

	noFeedback := bson.A{
		bson.M{"feedback": bson.M{"$exists": false}},
		bson.M{"feedback": ""},
	}
	if n, err := jobs.CountDocuments(ctx, bson.M{"is_approved": false, "$or": noFeedback}); err == nil {
		out.PendingJobs = n
	}
	if n, err := jobs.CountDocuments(ctx, bson.M{"is_approved": false, "feedback": bson.M{"$gt": ""}}); err == nil {
		out.UnapprovedJobs = n
	}

	// sum of registrations across all jobs
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$registrations", bson.A{}}}}},
		}}},
	}
	if cur, err := jobs.Aggregate(ctx, pipeline); err == nil {
		var rows []struct {
			Total int64 `bson:"total"`
		}
		if cur.All(ctx, &rows) == nil && len(rows) > 0 {
			out.Registrations = rows[0].Total
		}
	}

	users := db.Collection("users")
	for _, role := range models.Roles() {
		if n, err := users.CountDocuments(ctx, bson.M{"role": role}); err == nil {
			out.UsersByRole[role] = n
		}
	}
	return out
}
