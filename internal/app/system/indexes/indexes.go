// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureJobs(ctx, db); err != nil {
		problems = append(problems, "jobs: "+err.Error())
	}
	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB return IndexOptionsConflict when an index with the same keys
// already exists under a different name or with different options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := ensureIndex(ctx, coll, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	sig := keySig(m.Keys.(bson.D))
	start := time.Now()
	log := zap.L().With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", boolVal(unique)))

	ex, found := listExisting(ctx, coll)[sig]
	if !found {
		_, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			log.Info("index ensured", zap.Duration("took", time.Since(start)))
			return nil
		}
		if !isOptionsConflictErr(err) {
			log.Warn("index ensure failed", zap.Error(err))
			return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
		}
		// The server sees a conflicting index our listing missed; reload.
		ex, found = listExisting(ctx, coll)[sig]
		if !found {
			log.Warn("index ensure failed", zap.Error(err))
			return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
		}
	}

	if boolVal(unique) == boolVal(ex.Unique) && (name == "" || ex.Name == name) {
		log.Info("reusing existing index", zap.Duration("took", time.Since(start)))
		return nil
	}

	// Name or uniqueness differ: drop and recreate.
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
		return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		if isDuplicateKeyErr(err) && boolVal(unique) {
			return fmt.Errorf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig)
		}
		return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
	}
	log.Info("index dropped and recreated",
		zap.String("previous", ex.Name),
		zap.Duration("took", time.Since(start)))
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureJobs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("jobs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Public and moderation listings: filter on approval, newest first.
		{
			Keys: bson.D{
				{Key: "is_approved", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().SetName("idx_jobs_approved_created_id"),
		},
		// Category filter ($in over a multikey array).
		{
			Keys: bson.D{
				{Key: "categories", Value: 1},
				{Key: "is_approved", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_jobs_categories_approved_created"),
		},
		// "Jobs I registered for".
		{
			Keys:    bson.D{{Key: "registrations", Value: 1}},
			Options: options.Index().SetName("idx_jobs_registrations"),
		},
		// Organizer listing, case-insensitive.
		{
			Keys:    bson.D{{Key: "organizer_ci", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_jobs_organizerci_created"),
		},
		{
			Keys:    bson.D{{Key: "created_by_id", Value: 1}},
			Options: options.Index().SetName("idx_jobs_created_by"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email is the login id and must be unique. Stored lower-cased.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_role_nameci"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_events")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_job_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
	})
}
