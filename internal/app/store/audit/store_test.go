package audit_test

import (
	"testing"
	"time"

	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"github.com/felix-ong/volunteer-board/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log_FillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v not set", events[0].Timestamp)
	}
}

func TestStore_ForJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	jobID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	for _, ev := range []audit.Event{
		{Category: audit.CategoryModeration, EventType: audit.EventJobUnapproved, JobID: &jobID, Success: true},
		{Category: audit.CategoryModeration, EventType: audit.EventJobRejected, JobID: &jobID, Success: true,
			Details: map[string]string{"reason": "duplicate posting"}},
		{Category: audit.CategoryModeration, EventType: audit.EventJobApproved, JobID: &other, Success: true},
	} {
		if err := store.Log(ctx, ev); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	events, err := store.ForJob(ctx, jobID, 10)
	if err != nil {
		t.Fatalf("ForJob: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != audit.EventJobRejected {
		t.Errorf("newest first: got %s", events[0].EventType)
	}
	if events[0].Details["reason"] != "duplicate posting" {
		t.Errorf("reason not stored: %v", events[0].Details)
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryModeration})
	if err != nil {
		t.Fatalf("CountByFilter: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
