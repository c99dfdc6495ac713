package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Job is a volunteering opportunity posted by a student group, organization
// or admin. It is only publicly listed once IsApproved is true.
//
// NOTE:
//   - Registrations is the only record of who signed up for a job. A user's
//     registered jobs are always derived from it with a query on
//     "registrations"; nothing is stored on the user document.
//   - Feedback is set by an admin when a job is sent back to its organizer
//     and cleared again on approval.
type Job struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Organizer    string `bson:"organizer,omitempty" json:"organizer,omitempty"`
	OrganizerCI  string `bson:"organizer_ci,omitempty" json:"-"` // lowercase, diacritics-stripped
	ContactName  string `bson:"contact_name,omitempty" json:"contactName,omitempty"`
	TelephoneNum string `bson:"telephone_num,omitempty" json:"telephoneNum,omitempty"`
	MobileNum    string `bson:"mobile_num,omitempty" json:"mobileNum,omitempty"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
	Website      string `bson:"website,omitempty" json:"website,omitempty"`

	Title     string `bson:"title" json:"title"`
	TitleCI   string `bson:"title_ci" json:"-"`
	Purpose   string `bson:"purpose" json:"purpose"`
	PurposeCI string `bson:"purpose_ci" json:"-"`
	Skills    string `bson:"skills,omitempty" json:"skills,omitempty"`
	SkillsCI  string `bson:"skills_ci,omitempty" json:"-"`
	Location  string `bson:"location,omitempty" json:"location,omitempty"`
	ImageURL  string `bson:"image_url,omitempty" json:"imageUrl,omitempty"`

	Categories  []string    `bson:"categories" json:"categories"`
	Suitability []string    `bson:"suitability" json:"suitability"`
	Dates       []time.Time `bson:"dates" json:"dates"`
	Hours       float64     `bson:"hours" json:"hours"`

	Registrations     []primitive.ObjectID `bson:"registrations" json:"registrations,omitempty"`
	RegistrationCount int                  `bson:"-" json:"registrationCount"` // filled on read

	IsApproved bool       `bson:"is_approved" json:"isApproved"`
	Feedback   string     `bson:"feedback,omitempty" json:"feedback,omitempty"`
	FeedbackAt *time.Time `bson:"feedback_at,omitempty" json:"feedbackAt,omitempty"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"createdById"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Job moderation states. They are derived from IsApproved and Feedback and
// are never stored.
const (
	JobPending    = "pending"
	JobApproved   = "approved"
	JobUnapproved = "unapproved"
)

// State reports the moderation state of the job.
func (j Job) State() string {
	switch {
	case j.IsApproved:
		return JobApproved
	case j.Feedback != "":
		return JobUnapproved
	default:
		return JobPending
	}
}

// IsRegistered reports whether userID is in the job's registration set.
func (j Job) IsRegistered(userID primitive.ObjectID) bool {
	for _, id := range j.Registrations {
		if id == userID {
			return true
		}
	}
	return false
}

// Registrant is one entry of a job's registration list. Name and Email are
// filled in when the user record still exists.
type Registrant struct {
	UserID primitive.ObjectID `json:"userId"`
	Name   string             `json:"name,omitempty"`
	Email  string             `json:"email,omitempty"`
}
