// Package delegation models "who stands in for whom". A delegation is either
// manual (a human created it) or bounded (the propagation algorithm wrote it
// and may rewrite or delete it), and either permanent or time-boxed.
package delegation

import (
	"time"

	"github.com/google/uuid"
)

type Delegation struct {
	OwnerID        uuid.UUID
	DelegateID     uuid.UUID
	ExpirationDate *time.Time
	Bounded        bool
	CreatedAt      time.Time
}

// AutoPermanent marks a substitute written by propagation: valid until the
// owner returns or the row is revoked, and safe for the algorithm to delete.
func (d Delegation) AutoPermanent() bool {
	return d.Bounded && d.ExpirationDate == nil
}

func (d Delegation) Expired(now time.Time) bool {
	return d.ExpirationDate != nil && d.ExpirationDate.Before(now)
}

// ExpiredRow joins an expired delegation with the owner's current
// availability, which decides whether the sweeper must re-propagate.
type ExpiredRow struct {
	Delegation
	OwnerAvailable bool
}
