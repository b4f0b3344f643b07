// Package memory holds the map-backed delegation repository used by the
// service unit tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
)

type pairKey struct {
	ownerID    uuid.UUID
	delegateID uuid.UUID
}

type DelegationStore struct {
	mu   sync.RWMutex
	rows map[pairKey]delegation.Delegation

	// ownerAvailable resolves the owner's availability flag for ListExpired.
	ownerAvailable func(uuid.UUID) bool
}

func NewDelegationStore(ownerAvailable func(uuid.UUID) bool) *DelegationStore {
	if ownerAvailable == nil {
		ownerAvailable = func(uuid.UUID) bool { return true }
	}
	return &DelegationStore{
		rows:           make(map[pairKey]delegation.Delegation),
		ownerAvailable: ownerAvailable,
	}
}

func (s *DelegationStore) GetByPair(ctx context.Context, ownerID, delegateID uuid.UUID) (delegation.Delegation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.rows[pairKey{ownerID, delegateID}]
	if !ok {
		return delegation.Delegation{}, delegation.ErrNotFound
	}
	return d, nil
}

func (s *DelegationStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]delegation.Delegation, error) {
	return s.list(func(d delegation.Delegation) bool { return d.OwnerID == ownerID }), nil
}

func (s *DelegationStore) ListByDelegate(ctx context.Context, delegateID uuid.UUID, boundedOnly bool) ([]delegation.Delegation, error) {
	return s.list(func(d delegation.Delegation) bool {
		return d.DelegateID == delegateID && (!boundedOnly || d.Bounded)
	}), nil
}

func (s *DelegationStore) list(match func(delegation.Delegation) bool) []delegation.Delegation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]delegation.Delegation, 0, 4)
	for _, d := range s.rows {
		if match(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *DelegationStore) Insert(ctx context.Context, d delegation.Delegation) (delegation.Delegation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.OwnerID == d.DelegateID {
		return delegation.Delegation{}, delegation.ErrSelfDelegation
	}
	key := pairKey{d.OwnerID, d.DelegateID}
	if _, ok := s.rows[key]; ok {
		return delegation.Delegation{}, delegation.ErrDuplicatePair
	}
	d.CreatedAt = time.Now().UTC()
	s.rows[key] = d
	return d, nil
}

func (s *DelegationStore) SetBounded(ctx context.Context, ownerID, delegateID uuid.UUID, bounded bool) error {
	return s.update(ownerID, delegateID, func(d *delegation.Delegation) { d.Bounded = bounded })
}

func (s *DelegationStore) SetExpiration(ctx context.Context, ownerID, delegateID uuid.UUID, expiration *time.Time) error {
	return s.update(ownerID, delegateID, func(d *delegation.Delegation) { d.ExpirationDate = expiration })
}

func (s *DelegationStore) update(ownerID, delegateID uuid.UUID, apply func(*delegation.Delegation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{ownerID, delegateID}
	d, ok := s.rows[key]
	if !ok {
		return delegation.ErrNotFound
	}
	apply(&d)
	s.rows[key] = d
	return nil
}

func (s *DelegationStore) DeletePair(ctx context.Context, ownerID, delegateID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, pairKey{ownerID, delegateID})
	return nil
}

func (s *DelegationStore) DeleteAutoPermanentByOwner(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.rows {
		if d.OwnerID == ownerID && d.AutoPermanent() {
			delete(s.rows, key)
		}
	}
	return nil
}

func (s *DelegationStore) DemoteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, d := range s.rows {
		if d.OwnerID == ownerID && d.Bounded {
			d.Bounded = false
			s.rows[key] = d
		}
	}
	return nil
}

func (s *DelegationStore) ListExpired(ctx context.Context, now time.Time) ([]delegation.ExpiredRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]delegation.ExpiredRow, 0, 4)
	for _, d := range s.rows {
		if d.Expired(now) {
			out = append(out, delegation.ExpiredRow{
				Delegation:     d,
				OwnerAvailable: s.ownerAvailable(d.OwnerID),
			})
		}
	}
	return out, nil
}
