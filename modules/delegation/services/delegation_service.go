package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
	"github.com/standin-hq/standin/pkg/eventbus"
	"github.com/standin-hq/standin/pkg/metrics"
)

// DelegationService owns delegation records and reacts to availability
// transitions by walking the hierarchy. Mutating entry points are expected to
// run inside one transaction so availability flips never leave a half-written
// delegation chain.
type DelegationService struct {
	delegations delegation.Repository
	users       user.Repository
	edges       hierarchy.Repository
	publisher   eventbus.EventBus
}

func NewDelegationService(
	delegations delegation.Repository,
	users user.Repository,
	edges hierarchy.Repository,
	publisher eventbus.EventBus,
) *DelegationService {
	return &DelegationService{
		delegations: delegations,
		users:       users,
		edges:       edges,
		publisher:   publisher,
	}
}

// Create inserts the (owner, delegate) pair or, when it already exists and
// overwrite is set, updates exactly one field: an expiry-free write is an
// automation write and may only touch the bounded flag, a write carrying an
// expiration is a manual write and may only touch the expiration. This keeps
// propagation from clobbering manually set expirations and manual extensions
// from clobbering the flag automation relies on.
func (s *DelegationService) Create(ctx context.Context, d delegation.Delegation, overwrite bool) (delegation.Delegation, error) {
	if d.OwnerID == d.DelegateID {
		return delegation.Delegation{}, delegation.ErrSelfDelegation
	}

	existing, err := s.delegations.GetByPair(ctx, d.OwnerID, d.DelegateID)
	switch {
	case err == nil:
		if !overwrite {
			return existing, nil
		}
		if d.ExpirationDate == nil {
			if err := s.delegations.SetBounded(ctx, d.OwnerID, d.DelegateID, d.Bounded); err != nil {
				return delegation.Delegation{}, err
			}
		} else {
			if err := s.delegations.SetExpiration(ctx, d.OwnerID, d.DelegateID, d.ExpirationDate); err != nil {
				return delegation.Delegation{}, err
			}
		}
		return s.delegations.GetByPair(ctx, d.OwnerID, d.DelegateID)
	case errors.Is(err, delegation.ErrNotFound):
		created, err := s.delegations.Insert(ctx, d)
		if err != nil {
			return delegation.Delegation{}, err
		}
		s.publisher.Publish(delegation.CreatedEvent{Delegation: created})
		return created, nil
	default:
		return delegation.Delegation{}, err
	}
}

func (s *DelegationService) Revoke(ctx context.Context, ownerID, delegateID uuid.UUID) error {
	if err := s.delegations.DeletePair(ctx, ownerID, delegateID); err != nil {
		return err
	}
	s.publisher.Publish(delegation.RevokedEvent{OwnerID: ownerID, DelegateID: delegateID})
	return nil
}

func (s *DelegationService) ListAsOwner(ctx context.Context, ownerID uuid.UUID) ([]delegation.Delegation, error) {
	return s.delegations.ListByOwner(ctx, ownerID)
}

func (s *DelegationService) ListAsDelegate(ctx context.Context, delegateID uuid.UUID) ([]delegation.Delegation, error) {
	return s.delegations.ListByDelegate(ctx, delegateID, false)
}

func (s *DelegationService) SetThreshold(ctx context.Context, userID uuid.UUID, threshold int) (user.User, error) {
	u, err := s.users.UpdateThreshold(ctx, userID, threshold)
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(user.ThresholdChangedEvent{UserID: userID, Threshold: threshold})
	return u, nil
}

// SetAvailability flips the user's availability flag and adjusts the
// delegation chains that depend on it.
//
// Going absent: if the user owns no delegations yet, propagate substitutes
// from it; and for every owner the user was itself standing in for, extend
// that owner's chain past the now-absent substitute.
//
// Returning: clear the user's own automatic delegations, demote its leftovers
// to manual, and retract the over-propagation that skipped past the user
// while it was away.
func (s *DelegationService) SetAvailability(ctx context.Context, userID uuid.UUID, available bool) error {
	if err := s.users.UpdateAvailability(ctx, userID, available); err != nil {
		return err
	}

	if !available {
		asDelegate, err := s.delegations.ListByDelegate(ctx, userID, true)
		if err != nil {
			return err
		}

		owned, err := s.delegations.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if len(owned) == 0 {
			u, err := s.users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			if err := s.propagateFromOwner(ctx, userID, 1, u.DelegationThreshold()); err != nil {
				return err
			}
		}

		for _, d := range asDelegate {
			depth, ok, err := s.edges.Depth(ctx, d.OwnerID, userID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			owner, err := s.users.GetByID(ctx, d.OwnerID)
			if err != nil {
				return err
			}
			if err := s.propagateFromOwner(ctx, d.OwnerID, depth, owner.DelegationThreshold()); err != nil {
				return err
			}
		}
	} else {
		if err := s.disable(ctx, userID); err != nil {
			return err
		}
		if err := s.disableBelow(ctx, userID); err != nil {
			return err
		}
	}

	s.publisher.Publish(user.AvailabilityChangedEvent{UserID: userID, Available: available})
	return nil
}

// propagateFromOwner walks depths startDepth..maxDepth below the owner. Every
// descendant at a visited depth is forced into an auto-permanent delegation,
// available or not, so a human reading the chain sees every intermediate. The
// walk stops after the first depth that contains an available descendant: a
// live substitute is reachable and deeper depths stay untouched.
func (s *DelegationService) propagateFromOwner(ctx context.Context, ownerID uuid.UUID, startDepth, maxDepth int) error {
	for depth := startDepth; depth <= maxDepth; depth++ {
		rows, err := s.edges.Descendants(ctx, ownerID, depth, depth, false)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}

		foundAvailable := false
		for _, row := range rows {
			if row.User.Available() {
				foundAvailable = true
			}
			if _, err := s.Create(ctx, delegation.Delegation{
				OwnerID:    ownerID,
				DelegateID: row.User.ID(),
				Bounded:    true,
			}, true); err != nil {
				return err
			}
			metrics.DelegationsPropagated.Inc()
		}
		if foundAvailable {
			return nil
		}
	}
	return nil
}

// disable clears the returning owner's own chain: automatic substitutes are
// deleted, everything else the owner still has (time-boxed rows included)
// survives as a manual delegation.
func (s *DelegationService) disable(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.delegations.DeleteAutoPermanentByOwner(ctx, ownerID); err != nil {
		return err
	}
	return s.delegations.DemoteByOwner(ctx, ownerID)
}

// disableBelow retracts over-propagation around a user that became available
// again: for every common owner O, delegations deeper than depth(O, user) no
// longer need to exist — the user is a valid stopping point once more.
// Automatic permanent rows are deleted, time-boxed ones are demoted to
// manual.
func (s *DelegationService) disableBelow(ctx context.Context, userID uuid.UUID) error {
	refEdges, err := s.edges.AncestorsOf(ctx, userID)
	if err != nil {
		return err
	}

	for _, ref := range refEdges {
		owned, err := s.delegations.ListByOwner(ctx, ref.AncestorID)
		if err != nil {
			return err
		}
		for _, d := range owned {
			depth, ok, err := s.edges.Depth(ctx, ref.AncestorID, d.DelegateID)
			if err != nil {
				return err
			}
			if !ok || depth <= ref.Depth {
				continue
			}
			if d.ExpirationDate == nil {
				if d.Bounded {
					if err := s.delegations.DeletePair(ctx, d.OwnerID, d.DelegateID); err != nil {
						return err
					}
				}
			} else {
				if err := s.delegations.SetBounded(ctx, d.OwnerID, d.DelegateID, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RepropagateIfUncovered re-creates an absent owner's chain when its last
// delegation disappeared; the sweeper calls this after retiring expired rows.
func (s *DelegationService) RepropagateIfUncovered(ctx context.Context, ownerID uuid.UUID) error {
	owned, err := s.delegations.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(owned) > 0 {
		return nil
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.propagateFromOwner(ctx, ownerID, 1, owner.DelegationThreshold())
}
