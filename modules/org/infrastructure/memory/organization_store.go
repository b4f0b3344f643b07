package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
)

type OrganizationStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]organization.Organization
}

func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{orgs: make(map[uuid.UUID]organization.Organization)}
}

func (s *OrganizationStore) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := organization.Hydrate(uuid.New(), org.Name(), time.Now().UTC())
	s.orgs[created.ID()] = created
	return created, nil
}

func (s *OrganizationStore) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[id]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	return org, nil
}

func (s *OrganizationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[id]; !ok {
		return organization.ErrNotFound
	}
	delete(s.orgs, id)
	return nil
}
