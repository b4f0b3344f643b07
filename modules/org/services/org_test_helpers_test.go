package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/infrastructure/memory"
	"github.com/standin-hq/standin/pkg/eventbus"
)

type orgFixture struct {
	ctx   context.Context
	orgID uuid.UUID
	users *memory.UserStore
	edges *memory.HierarchyStore
	links *HierarchyService
	svc   *UserService
}

func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()

	users := memory.NewUserStore()
	edges := memory.NewHierarchyStore(users)
	links := NewHierarchyService(edges)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return &orgFixture{
		ctx:   context.Background(),
		orgID: uuid.New(),
		users: users,
		edges: edges,
		links: links,
		svc:   NewUserService(users, edges, links, eventbus.NewEventPublisher(log)),
	}
}

func (f *orgFixture) mustCreateUser(t *testing.T, name string, parentID *uuid.UUID) user.User {
	t.Helper()

	u, err := f.svc.Create(f.ctx, f.orgID, name, name+"@example.com", parentID)
	require.NoError(t, err)
	return u
}

func (f *orgFixture) mustDepth(t *testing.T, ancestorID, descendantID uuid.UUID) int {
	t.Helper()

	depth, ok, err := f.edges.Depth(f.ctx, ancestorID, descendantID)
	require.NoError(t, err)
	require.True(t, ok, "expected a path from %s to %s", ancestorID, descendantID)
	return depth
}

func idPtr(id uuid.UUID) *uuid.UUID { return &id }
