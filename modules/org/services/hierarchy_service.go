package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
)

// HierarchyService maintains the closure table. Callers are expected to run
// mutating operations inside a transaction (composables.InTx or an
// equivalent scope) so the detach and reattach steps commit or roll back as
// one unit.
type HierarchyService struct {
	edges hierarchy.Repository
}

func NewHierarchyService(edges hierarchy.Repository) *HierarchyService {
	return &HierarchyService{edges: edges}
}

// AddLink re-parents child under parent, carrying the child's whole subtree
// along. The detach step removes every path from the child's old ancestor
// chain into the subtree; since any such path must traverse the child (tree
// precondition), deleting old-ancestors × subtree-members is exact.
func (s *HierarchyService) AddLink(ctx context.Context, organizationID, parentID, childID uuid.UUID) error {
	wouldCycle, err := s.edges.PathExists(ctx, organizationID, childID, parentID)
	if err != nil {
		return err
	}
	if wouldCycle {
		return hierarchy.ErrCycle
	}

	ancestors, err := s.edges.AncestorEdges(ctx, organizationID, parentID)
	if err != nil {
		return err
	}
	descendants, err := s.edges.DescendantEdges(ctx, organizationID, childID)
	if err != nil {
		return err
	}
	// Self edges are the anchor of the reattach join; their absence means the
	// user was never registered in this organization's chart.
	if len(ancestors) == 0 || len(descendants) == 0 {
		return user.ErrNotFound
	}

	oldChain, err := s.edges.AncestorEdges(ctx, organizationID, childID)
	if err != nil {
		return err
	}
	oldAncestorIDs := make([]uuid.UUID, 0, len(oldChain))
	for _, e := range oldChain {
		if e.Depth > 0 {
			oldAncestorIDs = append(oldAncestorIDs, e.AncestorID)
		}
	}
	subtreeIDs := make([]uuid.UUID, 0, len(descendants))
	for _, e := range descendants {
		subtreeIDs = append(subtreeIDs, e.DescendantID)
	}
	if err := s.edges.DeleteEdgePairs(ctx, organizationID, oldAncestorIDs, subtreeIDs); err != nil {
		return err
	}

	// Standard closure-table move: connect every ancestor of the parent
	// (parent's self edge included) to every descendant of the child (child's
	// self edge included), one hop longer than the two partial paths.
	newEdges := make([]hierarchy.Edge, 0, len(ancestors)*len(descendants))
	for _, p := range ancestors {
		for _, c := range descendants {
			newEdges = append(newEdges, hierarchy.Edge{
				OrganizationID: organizationID,
				AncestorID:     p.AncestorID,
				DescendantID:   c.DescendantID,
				Depth:          p.Depth + c.Depth + 1,
			})
		}
	}
	return s.edges.InsertEdges(ctx, newEdges)
}

// RemoveLink deletes every closure path that traverses the parent→child hop:
// all edges from an ancestor of parent to a descendant of child. Sound only
// under the single-parent tree assumption, where no alternate path can
// connect the two sets.
func (s *HierarchyService) RemoveLink(ctx context.Context, organizationID, parentID, childID uuid.UUID) error {
	ancestors, err := s.edges.AncestorEdges(ctx, organizationID, parentID)
	if err != nil {
		return err
	}
	descendants, err := s.edges.DescendantEdges(ctx, organizationID, childID)
	if err != nil {
		return err
	}

	ancestorIDs := make([]uuid.UUID, 0, len(ancestors))
	for _, e := range ancestors {
		ancestorIDs = append(ancestorIDs, e.AncestorID)
	}
	descendantIDs := make([]uuid.UUID, 0, len(descendants))
	for _, e := range descendants {
		descendantIDs = append(descendantIDs, e.DescendantID)
	}
	return s.edges.DeleteEdgePairs(ctx, organizationID, ancestorIDs, descendantIDs)
}

// GetDescendants lists proper descendants of a user ordered by depth
// ascending; minDepth must be at least 1.
func (s *HierarchyService) GetDescendants(ctx context.Context, userID uuid.UUID, minDepth, maxDepth int, availableOnly bool) ([]hierarchy.DescendantRow, error) {
	if minDepth < 1 || maxDepth < minDepth {
		return nil, hierarchy.ErrInvalidDepthRange
	}
	return s.edges.Descendants(ctx, userID, minDepth, maxDepth, availableOnly)
}
