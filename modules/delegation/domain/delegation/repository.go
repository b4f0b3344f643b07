package delegation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("delegation not found")
	ErrSelfDelegation = errors.New("owner and delegate must differ")
	ErrDuplicatePair  = errors.New("delegation already exists for this owner and delegate")
)

type Repository interface {
	GetByPair(ctx context.Context, ownerID, delegateID uuid.UUID) (Delegation, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Delegation, error)
	ListByDelegate(ctx context.Context, delegateID uuid.UUID, boundedOnly bool) ([]Delegation, error)

	Insert(ctx context.Context, d Delegation) (Delegation, error)
	SetBounded(ctx context.Context, ownerID, delegateID uuid.UUID, bounded bool) error
	SetExpiration(ctx context.Context, ownerID, delegateID uuid.UUID, expiration *time.Time) error
	DeletePair(ctx context.Context, ownerID, delegateID uuid.UUID) error

	// DeleteAutoPermanentByOwner removes the owner's bounded, expiry-free
	// rows — the ones propagation wrote.
	DeleteAutoPermanentByOwner(ctx context.Context, ownerID uuid.UUID) error
	// DemoteByOwner clears the bounded flag on every remaining row of the
	// owner, turning automatic leftovers into manual delegations.
	DemoteByOwner(ctx context.Context, ownerID uuid.UUID) error

	// ListExpired returns delegations whose expiration is in the past,
	// joined with the owner's availability flag.
	ListExpired(ctx context.Context, now time.Time) ([]ExpiredRow, error)
}
