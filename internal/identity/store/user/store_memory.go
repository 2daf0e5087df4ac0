package user

import (
	"context"
	"sort"
	"sync"

	"civicpulse/internal/identity/models"
	"civicpulse/pkg/domain"
	"civicpulse/pkg/platform/sentinel"
)

// InMemory keeps users in a mutex-guarded map. Point increments happen under
// the write lock, so concurrent credits are never lost.
type InMemory struct {
	mu    sync.RWMutex
	users map[domain.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[domain.UserID]*models.User)}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return sentinel.ErrDuplicate
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// IncrementPoints atomically adds delta to the user's points.
func (s *InMemory) IncrementPoints(_ context.Context, id domain.UserID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.Points += delta
	return nil
}

// TopByPoints returns up to limit users ordered by points descending.
// Ties break on user ID for a stable order.
func (s *InMemory) TopByPoints(_ context.Context, limit int) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Snapshot returns a deep copy of store state for the in-memory tx runner.
func (s *InMemory) Snapshot() map[domain.UserID]*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[domain.UserID]*models.User, len(s.users))
	for id, u := range s.users {
		cp := *u
		snap[id] = &cp
	}
	return snap
}

// Restore replaces store state from a snapshot taken earlier.
func (s *InMemory) Restore(snap map[domain.UserID]*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[domain.UserID]*models.User, len(snap))
	for id, u := range snap {
		cp := *u
		s.users[id] = &cp
	}
}
