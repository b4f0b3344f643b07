package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/delegation/infrastructure/memory"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	orgmemory "github.com/standin-hq/standin/modules/org/infrastructure/memory"
	orgservices "github.com/standin-hq/standin/modules/org/services"
	"github.com/standin-hq/standin/pkg/eventbus"
)

type engineFixture struct {
	ctx     context.Context
	orgID   uuid.UUID
	users   *orgmemory.UserStore
	edges   *orgmemory.HierarchyStore
	store   *memory.DelegationStore
	userSvc *orgservices.UserService
	engine  *DelegationService
	sweeper *SweeperService
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	users := orgmemory.NewUserStore()
	edges := orgmemory.NewHierarchyStore(users)
	store := memory.NewDelegationStore(users.Available)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(log)

	links := orgservices.NewHierarchyService(edges)
	engine := NewDelegationService(store, users, edges, bus)

	return &engineFixture{
		ctx:     context.Background(),
		orgID:   uuid.New(),
		users:   users,
		edges:   edges,
		store:   store,
		userSvc: orgservices.NewUserService(users, edges, links, bus),
		engine:  engine,
		sweeper: NewSweeperService(store, engine),
	}
}

func (f *engineFixture) mustCreateUser(t *testing.T, name string, parentID *uuid.UUID) user.User {
	t.Helper()

	u, err := f.userSvc.Create(f.ctx, f.orgID, name, name+"@example.com", parentID)
	require.NoError(t, err)
	return u
}

// mustCreateChain builds root→names[1]→names[2]→… and returns the users in
// chain order.
func (f *engineFixture) mustCreateChain(t *testing.T, names ...string) []user.User {
	t.Helper()

	out := make([]user.User, 0, len(names))
	var parentID *uuid.UUID
	for _, name := range names {
		u := f.mustCreateUser(t, name, parentID)
		id := u.ID()
		parentID = &id
		out = append(out, u)
	}
	return out
}

func (f *engineFixture) mustSetThreshold(t *testing.T, userID uuid.UUID, threshold int) {
	t.Helper()

	_, err := f.engine.SetThreshold(f.ctx, userID, threshold)
	require.NoError(t, err)
}

func (f *engineFixture) markUnavailable(t *testing.T, userIDs ...uuid.UUID) {
	t.Helper()

	for _, id := range userIDs {
		require.NoError(t, f.users.UpdateAvailability(f.ctx, id, false))
	}
}

func (f *engineFixture) mustOwned(t *testing.T, ownerID uuid.UUID) map[uuid.UUID]delegation.Delegation {
	t.Helper()

	rows, err := f.engine.ListAsOwner(f.ctx, ownerID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]delegation.Delegation, len(rows))
	for _, d := range rows {
		out[d.DelegateID] = d
	}
	return out
}
