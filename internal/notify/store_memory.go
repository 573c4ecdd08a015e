package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps notifications in memory for development and tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[uuid.UUID][]Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{notifications: make(map[uuid.UUID][]Notification)}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Create(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notifications[userID]
	out := make([]Notification, len(list))
	copy(out, list)
	return out, nil
}
