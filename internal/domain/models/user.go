// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents students, student groups, organizations and admins.
//
// NOTE:
//   - The jobs a user registered for are not embedded on User.
//     Query the jobs collection on "registrations" to discover them.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role         string             `bson:"role" json:"role"` // student | student_group | organization | admin
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	RegNum       string             `bson:"reg_num,omitempty" json:"regNum,omitempty"`         // organizations only
	ContactNum   string             `bson:"contact_num,omitempty" json:"contactNum,omitempty"` // groups and organizations

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
