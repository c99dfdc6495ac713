package memory

import (
	"context"
	"sync"
	"time"

	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditStore keeps audit events in memory, oldest first.
type AuditStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

// NewAuditStore creates an empty store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Log records event, filling in the id and timestamp when unset.
func (s *AuditStore) Log(_ context.Context, event audit.Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

// ForJob returns up to limit events for jobID, newest first.
func (s *AuditStore) ForJob(_ context.Context, jobID primitive.ObjectID, limit int64) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []audit.Event{}
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if e.JobID == nil || *e.JobID != jobID {
			continue
		}
		out = append(out, e)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}
