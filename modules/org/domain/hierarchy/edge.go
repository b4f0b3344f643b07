// Package hierarchy models an organization chart as a closure table: one row
// per ancestor/descendant pair, carrying the hop count between them. Every
// user has a depth-0 self edge; proper descendants start at depth 1.
package hierarchy

import (
	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
)

type Edge struct {
	OrganizationID uuid.UUID
	AncestorID     uuid.UUID
	DescendantID   uuid.UUID
	Depth          int
}

func SelfEdge(organizationID, userID uuid.UUID) Edge {
	return Edge{
		OrganizationID: organizationID,
		AncestorID:     userID,
		DescendantID:   userID,
		Depth:          0,
	}
}

// DescendantRow is one descendant of a queried ancestor together with its
// distance in hops.
type DescendantRow struct {
	User  user.User
	Depth int
}
