// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/felix-ong/volunteer-board/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the jobs, users and audit_events collections (if missing)
// and tries to attach JSON-Schema validators. On servers that don't support
// collMod/validators (e.g. some DocumentDB versions), we log and skip
// gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		// fall back to create-and-handle-race below
		logger.Warn("listCollections failed", zap.Error(err))
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var problems []string
	for _, c := range collections() {
		log := logger.With(zap.String("collection", c.name))
		if err := ensureCollection(ctx, db, c.name, have[c.name], log); err != nil {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if unsupported(err) {
				log.Info("validator skipped (unsupported)")
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		log.Info("validator ensured")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collection struct {
	name   string
	schema bson.M
}

func collections() []collection {
	return []collection{
		{"jobs", jobsSchema()},
		{"users", usersSchema()},
		{"audit_events", nil}, // written by the audit logger only
	}
}

// ensureCollection idempotently makes sure name exists.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, exists bool, log *zap.Logger) error {
	if exists {
		log.Debug("collection exists")
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists is fine (race or prior run).
		if commandErr(err, []int32{48}, "already exists", "namespace exists") {
			return nil
		}
		log.Warn("createCollection failed", zap.Error(err))
		return err
	}
	log.Info("created collection")
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

// unsupported matches "no such command" (59) and "not implemented" (115)
// as returned by DocumentDB and similar deployments.
func unsupported(err error) bool {
	return commandErr(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}

// commandErr reports whether err is a command error with one of codes, or
// mentions one of phrases.
func commandErr(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enum(vals []string) bson.A {
	out := bson.A{}
	for _, v := range vals {
		out = append(out, v)
	}
	return out
}

// jobsSchema backs up the service-level validation: a job always has a
// title, purpose, at least one known category and positive hours, and its
// registrations never repeat a user.
func jobsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "purpose", "categories", "hours", "registrations", "is_approved", "created_by_id", "created_at"},
			"properties": bson.M{
				"title":    nonBlank,
				"title_ci": bson.M{"bsonType": "string"},
				"purpose":  nonBlank,

				"categories": bson.M{
					"bsonType": "array",
					"minItems": 1,
					"items":    bson.M{"enum": enum(models.Categories())},
				},
				"suitability": bson.M{
					"bsonType": "array",
					"items":    bson.M{"enum": enum(models.Suitability())},
				},
				"dates": bson.M{
					"bsonType": "array",
					"items":    bson.M{"bsonType": "date"},
				},
				"hours": bson.M{
					"bsonType":         bson.A{"double", "int", "long"},
					"minimum":          0,
					"exclusiveMinimum": true,
				},
				"registrations": bson.M{
					"bsonType":    "array",
					"uniqueItems": true,
					"items":       bson.M{"bsonType": "objectId"},
				},
				"is_approved":   bson.M{"bsonType": "bool"},
				"feedback":      bson.M{"bsonType": "string"},
				"feedback_at":   bson.M{"bsonType": "date"},
				"created_by_id": bson.M{"bsonType": "objectId"},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "role", "password_hash"},
			"properties": bson.M{
				"name":          nonBlank,
				"name_ci":       bson.M{"bsonType": "string"},
				"email":         nonBlank,
				"role":          bson.M{"enum": enum(models.Roles())},
				"password_hash": nonBlank,
				"reg_num":       bson.M{"bsonType": "string"},
				"contact_num":   bson.M{"bsonType": "string"},
			},
		},
	}
}
