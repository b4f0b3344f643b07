// Package memory holds map-backed repository implementations used by the
// service unit tests. They honor the same error contracts as the postgres
// repositories but keep everything in process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]user.User)}
}

func (s *UserStore) Create(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email() == u.Email() {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	created := user.Hydrate(
		uuid.New(),
		u.OrganizationID(),
		u.FullName(),
		u.Email(),
		u.DelegationThreshold(),
		u.Available(),
		now,
		now,
	)
	s.users[created.ID()] = created
	return created, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) UpdateThreshold(ctx context.Context, id uuid.UUID, threshold int) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	updated := user.Hydrate(
		u.ID(), u.OrganizationID(), u.FullName(), u.Email(),
		threshold, u.Available(), u.CreatedAt(), time.Now().UTC(),
	)
	s.users[id] = updated
	return updated, nil
}

func (s *UserStore) UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	s.users[id] = user.Hydrate(
		u.ID(), u.OrganizationID(), u.FullName(), u.Email(),
		u.DelegationThreshold(), available, u.CreatedAt(), time.Now().UTC(),
	)
	return nil
}

// Available reports the availability flag of a stored user. Unknown users
// count as available so joins against missing rows fail loudly elsewhere.
func (s *UserStore) Available(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return !ok || u.Available()
}
