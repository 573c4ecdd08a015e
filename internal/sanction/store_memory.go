package sanction

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tribune/pkg/platform/sentinel"
)

// InMemoryStore keeps sanctions in memory for development and unit tests.
// It intentionally favors clarity over performance.
type InMemoryStore struct {
	mu        sync.RWMutex
	sanctions map[uuid.UUID]Sanction
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sanctions: make(map[uuid.UUID]Sanction)}
}

var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) Create(_ context.Context, sn *Sanction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sn.ID == uuid.Nil {
		sn.ID = uuid.New()
	}
	now := time.Now()
	if sn.CreatedAt.IsZero() {
		sn.CreatedAt = now
	}
	sn.UpdatedAt = now
	s.sanctions[sn.ID] = *sn
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sn, ok := s.sanctions[id]; ok {
		copied := sn
		return &copied, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID, includeInactive bool) ([]*Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Sanction
	for _, sn := range s.sanctions {
		if sn.UserID != userID {
			continue
		}
		if !includeInactive && !sn.IsActive {
			continue
		}
		copied := sn
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) ListActiveByUser(_ context.Context, userID uuid.UUID, now time.Time) ([]*Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Sanction
	for _, sn := range s.sanctions {
		if sn.UserID == userID && sn.IsInForceAt(now) {
			copied := sn
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, filter Filter, page Page) (*PagedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page = page.Normalize()

	var matched []*Sanction
	for _, sn := range s.sanctions {
		if filter.UserID != nil && sn.UserID != *filter.UserID {
			continue
		}
		if filter.ModeratorID != nil && sn.ModeratorID != *filter.ModeratorID {
			continue
		}
		if filter.Kind != nil && sn.Kind != *filter.Kind {
			continue
		}
		if filter.Severity != nil && sn.Severity != *filter.Severity {
			continue
		}
		if filter.IsActive != nil && sn.IsActive != *filter.IsActive {
			continue
		}
		copied := sn
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		less := false
		switch page.Sort {
		case SortUpdatedAt:
			less = matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
		case SortKind:
			less = matched[i].Kind < matched[j].Kind
		case SortSeverity:
			less = matched[i].Severity < matched[j].Severity
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if page.Desc {
			return !less
		}
		return less
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}

	return &PagedResult{
		Sanctions: matched[start:end],
		Total:     total,
		Page:      page.Number,
		Limit:     page.Limit,
	}, nil
}

func (s *InMemoryStore) Revoke(_ context.Context, id uuid.UUID, revokedBy uuid.UUID, reason string, at time.Time) (*Sanction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn, ok := s.sanctions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !sn.IsActive {
		return nil, sentinel.ErrInvalidState
	}
	sn.IsActive = false
	sn.RevokedAt = &at
	sn.RevokedBy = &revokedBy
	sn.RevokeReason = reason
	sn.UpdatedAt = at
	s.sanctions[id] = sn
	copied := sn
	return &copied, nil
}

func (s *InMemoryStore) DeactivateExpired(_ context.Context, now time.Time) ([]*Sanction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deactivated []*Sanction
	for id, sn := range s.sanctions {
		if sn.IsActive && sn.IsExpiredAt(now) {
			sn.IsActive = false
			sn.UpdatedAt = now
			s.sanctions[id] = sn
			copied := sn
			deactivated = append(deactivated, &copied)
		}
	}
	return deactivated, nil
}

func (s *InMemoryStore) CountActiveByKind(_ context.Context, kind Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sn := range s.sanctions {
		if sn.Kind == kind && sn.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Stats(_ context.Context, moderatorID *uuid.UUID) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &Stats{
		ByKind:     make(map[Kind]int),
		BySeverity: make(map[Severity]int),
	}
	for _, sn := range s.sanctions {
		if moderatorID != nil && sn.ModeratorID != *moderatorID {
			continue
		}
		stats.Total++
		if sn.IsActive {
			stats.Active++
		}
		stats.ByKind[sn.Kind]++
		stats.BySeverity[sn.Severity]++
	}
	return stats, nil
}
