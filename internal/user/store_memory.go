package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tribune/pkg/platform/sentinel"
)

// In-memory store keeps development and unit tests lightweight. It
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]User)}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByRole(_ context.Context, role Role) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, u := range s.users {
		if u.Role == role {
			copied := u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) UpdateFlags(_ context.Context, id uuid.UUID, flags ModerationFlags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.Flags = flags
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}
