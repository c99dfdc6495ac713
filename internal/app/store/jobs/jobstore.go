// internal/app/store/jobs/jobstore.go
package jobstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/felix-ong/volunteer-board/internal/app/system/htmlsanitize"
	"github.com/felix-ong/volunteer-board/internal/app/system/search"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrNotApproved       = errors.New("job is not approved")
	ErrAlreadyApproved   = errors.New("job is already approved")
	ErrAlreadyRegistered = errors.New("already registered for this job")
)

// Query selects one page of jobs in one approval partition.
type Query struct {
	Filter   search.Filter
	Approved bool
	Skip     int64
	Limit    int64
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("jobs")}
}

// Fold sets the *_ci search columns from their source fields. Purpose is
// folded from its text content, not its markup.
func Fold(j *models.Job) {
	j.TitleCI = text.Fold(j.Title)
	j.PurposeCI = text.Fold(htmlsanitize.StripTags(j.Purpose))
	j.OrganizerCI = text.Fold(j.Organizer)
	j.SkillsCI = text.Fold(j.Skills)
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func afterUpdate() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Create inserts j as a new pending job with no registrations.
func (s *Store) Create(ctx context.Context, j models.Job) (models.Job, error) {
	t := now()
	j.ID = primitive.NewObjectID()
	j.IsApproved = false
	j.Feedback = ""
	j.FeedbackAt = nil
	j.Registrations = []primitive.ObjectID{}
	j.CreatedAt = t
	j.UpdatedAt = t
	Fold(&j)

	if _, err := s.c.InsertOne(ctx, j); err != nil {
		return models.Job{}, err
	}
	return j, nil
}

// GetByID returns the job or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Job, error) {
	var j models.Job
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, ErrNotFound
	}
	return j, err
}

// Replace overwrites the descriptive fields of a job. Approval state,
// feedback, registrations and authorship are left alone.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, j models.Job) (models.Job, error) {
	Fold(&j)
	set := bson.M{
		"organizer":     j.Organizer,
		"organizer_ci":  j.OrganizerCI,
		"contact_name":  j.ContactName,
		"telephone_num": j.TelephoneNum,
		"mobile_num":    j.MobileNum,
		"email":         j.Email,
		"website":       j.Website,
		"title":         j.Title,
		"title_ci":      j.TitleCI,
		"purpose":       j.Purpose,
		"purpose_ci":    j.PurposeCI,
		"skills":        j.Skills,
		"skills_ci":     j.SkillsCI,
		"location":      j.Location,
		"image_url":     j.ImageURL,
		"categories":    j.Categories,
		"suitability":   j.Suitability,
		"dates":         j.Dates,
		"hours":         j.Hours,
		"updated_at":    now(),
	}
	var out models.Job
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, afterUpdate()).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, ErrNotFound
	}
	return out, err
}

// Delete removes a job and, with it, its registrations.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Register adds userID to the job's registrations in one conditional update.
// The filter only matches an approved job that does not already list the
// user, so concurrent duplicates cannot both succeed.
func (s *Store) Register(ctx context.Context, jobID, userID primitive.ObjectID) (models.Job, error) {
	filter := bson.M{
		"_id":           jobID,
		"is_approved":   true,
		"registrations": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$push": bson.M{"registrations": userID},
		"$set":  bson.M{"updated_at": now()},
	}
	var out models.Job
	err := s.c.FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, err
	}

	// The update matched nothing; find out why.
	cur, gerr := s.GetByID(ctx, jobID)
	if gerr != nil {
		return models.Job{}, gerr
	}
	if !cur.IsApproved {
		return models.Job{}, ErrNotApproved
	}
	return cur, ErrAlreadyRegistered
}

// Unregister removes userID from the job's registrations. A user who was
// not registered is not an error.
func (s *Store) Unregister(ctx context.Context, jobID, userID primitive.ObjectID) (models.Job, error) {
	update := bson.M{
		"$pull": bson.M{"registrations": userID},
		"$set":  bson.M{"updated_at": now()},
	}
	var out models.Job
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": jobID}, update, afterUpdate()).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, ErrNotFound
	}
	return out, err
}

// Approve moves a pending or unapproved job to approved and clears feedback.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID) (models.Job, error) {
	update := bson.M{
		"$set":   bson.M{"is_approved": true, "updated_at": now()},
		"$unset": bson.M{"feedback": "", "feedback_at": ""},
	}
	var out models.Job
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "is_approved": false}, update, afterUpdate()).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.Job{}, gerr
		}
		return models.Job{}, ErrAlreadyApproved
	}
	return out, err
}

// Unapprove sends a job back to its author with feedback. It applies from
// any state; the latest feedback replaces earlier feedback.
func (s *Store) Unapprove(ctx context.Context, id primitive.ObjectID, feedback string) (models.Job, error) {
	t := now()
	update := bson.M{"$set": bson.M{
		"is_approved": false,
		"feedback":    feedback,
		"feedback_at": t,
		"updated_at":  t,
	}}
	var out models.Job
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, afterUpdate()).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, ErrNotFound
	}
	return out, err
}

// DeleteUnapproved removes a job that is not approved and returns what was
// removed. An approved job yields ErrAlreadyApproved.
func (s *Store) DeleteUnapproved(ctx context.Context, id primitive.ObjectID) (models.Job, error) {
	var out models.Job
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id, "is_approved": false}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return models.Job{}, gerr
		}
		return models.Job{}, ErrAlreadyApproved
	}
	return out, err
}

// ListByOrganizer returns every job whose folded organizer equals the folded
// name, newest first.
func (s *Store) ListByOrganizer(ctx context.Context, name string) ([]models.Job, error) {
	return s.find(ctx, bson.M{"organizer_ci": text.Fold(name)}, options.Find().SetSort(newestFirst))
}

// ListRegisteredBy returns the jobs whose registrations include userID.
func (s *Store) ListRegisteredBy(ctx context.Context, userID primitive.ObjectID) ([]models.Job, error) {
	return s.find(ctx, bson.M{"registrations": userID}, options.Find().SetSort(newestFirst))
}

// QueryFilter builds the Mongo filter for q.
func QueryFilter(q Query) bson.M {
	filter := bson.M{"is_approved": q.Approved}
	if term := q.Filter.FoldedTerm(); term != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(term)}
		filter["$or"] = bson.A{
			bson.M{"title_ci": rx},
			bson.M{"purpose_ci": rx},
			bson.M{"organizer_ci": rx},
			bson.M{"skills_ci": rx},
		}
	}
	if len(q.Filter.Categories) > 0 {
		filter["categories"] = bson.M{"$in": q.Filter.Categories}
	}
	return filter
}

// Query returns one page of matching jobs, newest first, and the total
// number of matches.
func (s *Store) Query(ctx context.Context, q Query) ([]models.Job, int64, error) {
	filter := QueryFilter(q)
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	jobs := []models.Job{}
	if q.Skip >= total {
		return jobs, total, nil
	}
	opts := options.Find().SetSort(newestFirst).SetSkip(q.Skip).SetLimit(q.Limit)
	found, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return append(jobs, found...), total, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Job, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Job{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
