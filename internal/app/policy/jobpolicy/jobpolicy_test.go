package jobpolicy_test

import (
	"errors"
	"testing"

	"github.com/felix-ong/volunteer-board/internal/app/policy/jobpolicy"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ident(role string) auth.Identity {
	return auth.Identity{UserID: primitive.NewObjectID(), Role: role, Name: "Test " + role}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		action jobpolicy.Action
		role   string
		want   bool
	}{
		{jobpolicy.ActionCreate, models.RoleStudent, false},
		{jobpolicy.ActionCreate, models.RoleStudentGroup, true},
		{jobpolicy.ActionCreate, models.RoleOrganization, true},
		{jobpolicy.ActionCreate, models.RoleAdmin, true},

		{jobpolicy.ActionModerate, models.RoleAdmin, true},
		{jobpolicy.ActionModerate, models.RoleOrganization, false},
		{jobpolicy.ActionModerate, models.RoleStudent, false},

		{jobpolicy.ActionRegister, models.RoleStudent, true},
		{jobpolicy.ActionRegister, models.RoleStudentGroup, false},
		{jobpolicy.ActionRegister, models.RoleAdmin, false},

		{jobpolicy.ActionListOrganizer, models.RoleStudent, true},
		{jobpolicy.ActionListOrganizer, "visitor", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+tt.role, func(t *testing.T) {
			if got := jobpolicy.Allowed(tt.action, tt.role); got != tt.want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", tt.action, tt.role, got, tt.want)
			}
		})
	}
}

func TestCheck_NoCaller(t *testing.T) {
	err := jobpolicy.Check(jobpolicy.ActionCreate, auth.Identity{})
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCheck_WrongRole(t *testing.T) {
	err := jobpolicy.Check(jobpolicy.ActionCreate, ident(models.RoleStudent))
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestCheckJob_OwnerRule(t *testing.T) {
	owner := ident(models.RoleOrganization)
	other := ident(models.RoleOrganization)
	admin := ident(models.RoleAdmin)
	job := models.Job{ID: primitive.NewObjectID(), CreatedByID: owner.UserID}

	if err := jobpolicy.CheckJob(jobpolicy.ActionEdit, owner, job); err != nil {
		t.Errorf("owner edit: unexpected error %v", err)
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionEdit, admin, job); err != nil {
		t.Errorf("admin edit: unexpected error %v", err)
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionEdit, other, job); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("other org edit: expected ErrForbidden, got %v", err)
	}
	if err := jobpolicy.CheckJob(jobpolicy.ActionViewRegistrants, other, job); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("other org registrants: expected ErrForbidden, got %v", err)
	}
}

func TestCheckJob_RegisterIsNotOwnerScoped(t *testing.T) {
	student := ident(models.RoleStudent)
	job := models.Job{ID: primitive.NewObjectID(), CreatedByID: primitive.NewObjectID()}

	if err := jobpolicy.CheckJob(jobpolicy.ActionRegister, student, job); err != nil {
		t.Errorf("student register: unexpected error %v", err)
	}
}
