package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/system/normalize"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errBadRole = errors.New(`role must be "student"|"student_group"|"organization"|"admin"`)

// UserStore mirrors userstore.Store, including the unique email rule.
type UserStore struct {
	mu      sync.RWMutex
	users   map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *UserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalize.Email(email)]
	if !ok {
		return nil, userstore.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *UserStore) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserStore) Create(_ context.Context, u models.User) (models.User, error) {
	role, ok := models.ParseRole(u.Role)
	if !ok {
		return models.User{}, errBadRole
	}
	u.ID = primitive.NewObjectID()
	u.Role = role
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt = now
	u.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byEmail[u.Email]; dup {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *UserStore) SetRole(_ context.Context, id primitive.ObjectID, role string) error {
	role, ok := models.ParseRole(role)
	if !ok {
		return errBadRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.users[id]
	if !found {
		return userstore.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}
