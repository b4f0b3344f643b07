package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
)

type edgeKey struct {
	organizationID uuid.UUID
	ancestorID     uuid.UUID
	descendantID   uuid.UUID
}

// HierarchyStore keeps the closure rows in a plain map. It stores whatever
// edges the caller hands it; the closure bookkeeping lives in the service.
type HierarchyStore struct {
	mu    sync.RWMutex
	edges map[edgeKey]int
	users *UserStore
}

func NewHierarchyStore(users *UserStore) *HierarchyStore {
	return &HierarchyStore{
		edges: make(map[edgeKey]int),
		users: users,
	}
}

func (s *HierarchyStore) InsertSelfEdge(ctx context.Context, organizationID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges[edgeKey{organizationID, userID, userID}] = 0
	return nil
}

func (s *HierarchyStore) InsertEdges(ctx context.Context, edges []hierarchy.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range edges {
		s.edges[edgeKey{e.OrganizationID, e.AncestorID, e.DescendantID}] = e.Depth
	}
	return nil
}

func (s *HierarchyStore) PathExists(ctx context.Context, organizationID, ancestorID, descendantID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.edges[edgeKey{organizationID, ancestorID, descendantID}]
	return ok, nil
}

func (s *HierarchyStore) AncestorEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return s.collect(func(k edgeKey) bool {
		return k.organizationID == organizationID && k.descendantID == userID
	}), nil
}

func (s *HierarchyStore) DescendantEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return s.collect(func(k edgeKey) bool {
		return k.organizationID == organizationID && k.ancestorID == userID
	}), nil
}

func (s *HierarchyStore) AncestorsOf(ctx context.Context, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return s.collect(func(k edgeKey) bool {
		return k.descendantID == userID
	}), nil
}

func (s *HierarchyStore) collect(match func(edgeKey) bool) []hierarchy.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]hierarchy.Edge, 0, 8)
	for k, depth := range s.edges {
		if match(k) {
			out = append(out, hierarchy.Edge{
				OrganizationID: k.organizationID,
				AncestorID:     k.ancestorID,
				DescendantID:   k.descendantID,
				Depth:          depth,
			})
		}
	}
	return out
}

func (s *HierarchyStore) DeleteEdgePairs(ctx context.Context, organizationID uuid.UUID, ancestorIDs, descendantIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ancestors := make(map[uuid.UUID]struct{}, len(ancestorIDs))
	for _, id := range ancestorIDs {
		ancestors[id] = struct{}{}
	}
	descendants := make(map[uuid.UUID]struct{}, len(descendantIDs))
	for _, id := range descendantIDs {
		descendants[id] = struct{}{}
	}

	for k := range s.edges {
		if k.organizationID != organizationID {
			continue
		}
		if _, ok := ancestors[k.ancestorID]; !ok {
			continue
		}
		if _, ok := descendants[k.descendantID]; ok {
			delete(s.edges, k)
		}
	}
	return nil
}

func (s *HierarchyStore) Depth(ctx context.Context, ancestorID, descendantID uuid.UUID) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for k, depth := range s.edges {
		if k.ancestorID == ancestorID && k.descendantID == descendantID {
			return depth, true, nil
		}
	}
	return 0, false, nil
}

func (s *HierarchyStore) Descendants(ctx context.Context, ancestorID uuid.UUID, minDepth, maxDepth int, availableOnly bool) ([]hierarchy.DescendantRow, error) {
	s.mu.RLock()
	candidates := make([]hierarchy.Edge, 0, 8)
	for k, depth := range s.edges {
		if k.ancestorID != ancestorID || depth < minDepth || depth > maxDepth {
			continue
		}
		candidates = append(candidates, hierarchy.Edge{
			OrganizationID: k.organizationID,
			AncestorID:     k.ancestorID,
			DescendantID:   k.descendantID,
			Depth:          depth,
		})
	}
	s.mu.RUnlock()

	out := make([]hierarchy.DescendantRow, 0, len(candidates))
	for _, e := range candidates {
		u, err := s.users.GetByID(ctx, e.DescendantID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if availableOnly && !u.Available() {
			continue
		}
		out = append(out, hierarchy.DescendantRow{User: u, Depth: e.Depth})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out, nil
}
