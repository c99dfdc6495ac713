// Package jobpolicy provides authorization policies for job postings.
//
// Authorization rules:
//   - Student groups, organizations and admins can post jobs
//   - Authors can edit, delete and see the registrants of their own jobs;
//     admins can do so for every job
//   - Only admins moderate (approve, unapprove, reject, view the queue)
//   - Only students register and unregister themselves
//   - Any signed-in user can list jobs by organizer
package jobpolicy

import (
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionCreate          Action = "create"
	ActionEdit            Action = "edit"
	ActionDelete          Action = "delete"
	ActionModerate        Action = "moderate"
	ActionRegister        Action = "register"
	ActionViewRegistrants Action = "view_registrants"
	ActionListOrganizer   Action = "list_organizer"
)

var posters = []string{models.RoleStudentGroup, models.RoleOrganization, models.RoleAdmin}

var rules = map[Action][]string{
	ActionCreate:          posters,
	ActionEdit:            posters,
	ActionDelete:          posters,
	ActionViewRegistrants: posters,
	ActionModerate:        {models.RoleAdmin},
	ActionRegister:        {models.RoleStudent},
	ActionListOrganizer:   models.Roles(),
}

// ownerScoped actions additionally require the caller to be the job's author
// unless the caller is an admin.
var ownerScoped = map[Action]bool{
	ActionEdit:            true,
	ActionDelete:          true,
	ActionViewRegistrants: true,
}

// Allowed reports whether role may perform action at all.
func Allowed(action Action, role string) bool {
	for _, r := range rules[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Check returns nil when the caller may perform action, otherwise an
// Unauthorized (no caller) or Forbidden error.
func Check(action Action, id auth.Identity) error {
	if id.IsZero() {
		return apperr.Unauthorized("valid authentication required")
	}
	if !Allowed(action, id.Role) {
		return apperr.Forbidden("your role cannot " + describe(action))
	}
	return nil
}

// CheckJob is Check plus the author rule for owner-scoped actions.
func CheckJob(action Action, id auth.Identity, job models.Job) error {
	if err := Check(action, id); err != nil {
		return err
	}
	if ownerScoped[action] && !IsOwnerOrAdmin(id, job) {
		return apperr.Forbidden("only the job's author or an admin can " + describe(action))
	}
	return nil
}

// IsOwnerOrAdmin reports whether id authored job or is an admin.
func IsOwnerOrAdmin(id auth.Identity, job models.Job) bool {
	if id.IsZero() {
		return false
	}
	return id.Role == models.RoleAdmin || job.CreatedByID == id.UserID
}

func describe(a Action) string {
	switch a {
	case ActionCreate:
		return "post jobs"
	case ActionEdit:
		return "edit this job"
	case ActionDelete:
		return "delete this job"
	case ActionModerate:
		return "moderate jobs"
	case ActionRegister:
		return "register for jobs"
	case ActionViewRegistrants:
		return "view this job's registrations"
	case ActionListOrganizer:
		return "list jobs by organizer"
	}
	return string(a)
}
