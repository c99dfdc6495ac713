package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/system/indexes"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"github.com/felix-ong/volunteer-board/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		Name:         "  Green   Earth ",
		Email:        "Contact@GreenEarth.ORG",
		Role:         "Organization",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if u.Name != "Green Earth" || u.NameCI != "green earth" {
		t.Errorf("name not normalized: %q / %q", u.Name, u.NameCI)
	}
	if u.Email != "contact@greenearth.org" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.Role != models.RoleOrganization {
		t.Errorf("role = %q", u.Role)
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "superuser"}); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@example.com", Role: models.RoleStudent}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@example.com", Role: models.RoleStudent})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Lookups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.User{Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := store.Create(ctx, models.User{Name: "Ben", Email: "ben@example.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByEmail(ctx, " ANA@example.com ")
	if err != nil || got.ID != a.ID {
		t.Errorf("GetByEmail: %v %+v", err, got)
	}
	got, err = store.GetByID(ctx, b.ID)
	if err != nil || got.Email != "ben@example.com" {
		t.Errorf("GetByID: %v %+v", err, got)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	many, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(many) != 2 {
		t.Errorf("GetByIDs returned %d users, want 2", len(many))
	}
}

func TestStore_SetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: "Root", Email: "root@example.com", Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.Role != models.RoleAdmin {
		t.Errorf("role = %q", got.Role)
	}
	if err := store.SetRole(ctx, primitive.NewObjectID(), models.RoleAdmin); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
