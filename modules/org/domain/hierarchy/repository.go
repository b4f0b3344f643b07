package hierarchy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrCycle is returned when a link would make a user its own ancestor.
	ErrCycle = errors.New("cycle detected: cannot make a descendant into an ancestor")

	ErrInvalidDepthRange = errors.New("invalid depth range")
)

// Repository stores closure-table edges. Link edits are scoped to one
// organization; depth lookups and descendant walks are keyed by user alone,
// which is equivalent because edges never cross organizations.
type Repository interface {
	InsertSelfEdge(ctx context.Context, organizationID, userID uuid.UUID) error
	InsertEdges(ctx context.Context, edges []Edge) error

	// PathExists reports whether descendantID is reachable from ancestorID
	// (including the self edge).
	PathExists(ctx context.Context, organizationID, ancestorID, descendantID uuid.UUID) (bool, error)

	// AncestorEdges returns every edge ending at userID, self edge included.
	AncestorEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]Edge, error)
	// DescendantEdges returns every edge starting at userID, self edge included.
	DescendantEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]Edge, error)

	// AncestorsOf is the unscoped variant used by delegation propagation,
	// where only the user is known.
	AncestorsOf(ctx context.Context, userID uuid.UUID) ([]Edge, error)

	// DeleteEdgePairs removes every edge whose ancestor appears in
	// ancestorIDs and whose descendant appears in descendantIDs.
	DeleteEdgePairs(ctx context.Context, organizationID uuid.UUID, ancestorIDs, descendantIDs []uuid.UUID) error

	// Depth returns the hop count from ancestorID to descendantID, and false
	// when no path exists.
	Depth(ctx context.Context, ancestorID, descendantID uuid.UUID) (int, bool, error)

	// Descendants returns users below ancestorID with minDepth <= depth <=
	// maxDepth, ordered by depth ascending.
	Descendants(ctx context.Context, ancestorID uuid.UUID, minDepth, maxDepth int, availableOnly bool) ([]DescendantRow, error)
}
