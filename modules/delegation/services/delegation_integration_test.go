package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/delegation/infrastructure/persistence"
	"github.com/standin-hq/standin/modules/delegation/services"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	orgpersistence "github.com/standin-hq/standin/modules/org/infrastructure/persistence"
	orgservices "github.com/standin-hq/standin/modules/org/services"
	"github.com/standin-hq/standin/pkg/composables"
	"github.com/standin-hq/standin/pkg/eventbus"
	"github.com/standin-hq/standin/pkg/testdb"
)

type pgEngineFixture struct {
	ctx     context.Context
	orgID   uuid.UUID
	users   *orgservices.UserService
	engine  *services.DelegationService
	sweeper *services.SweeperService
	repo    delegation.Repository
}

func newPgEngineFixture(t *testing.T) *pgEngineFixture {
	t.Helper()

	pool := testdb.Pool(t)
	ctx := composables.WithPool(context.Background(), pool)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(log)

	edges := orgpersistence.NewHierarchyRepository()
	hierarchySvc := orgservices.NewHierarchyService(edges)
	userRepo := orgpersistence.NewUserRepository()
	userSvc := orgservices.NewUserService(userRepo, edges, hierarchySvc, bus)

	repo := persistence.NewDelegationRepository()
	engine := services.NewDelegationService(repo, userRepo, edges, bus)
	sweeper := services.NewSweeperService(repo, engine)

	var org organization.Organization
	require.NoError(t, composables.InTx(ctx, func(txCtx context.Context) error {
		created, err := orgpersistence.NewOrganizationRepository().Create(txCtx, organization.New("Acme"))
		org = created
		return err
	}))

	return &pgEngineFixture{
		ctx:     ctx,
		orgID:   org.ID(),
		users:   userSvc,
		engine:  engine,
		sweeper: sweeper,
		repo:    repo,
	}
}

// createChain builds a reporting line, each user under the previous one, and
// returns the users top-down.
func (f *pgEngineFixture) createChain(t *testing.T, names ...string) []user.User {
	t.Helper()

	chain := make([]user.User, 0, len(names))
	var parentID *uuid.UUID
	for _, name := range names {
		var created user.User
		require.NoError(t, composables.InTx(f.ctx, func(txCtx context.Context) error {
			u, err := f.users.Create(txCtx, f.orgID, name, name+"@example.com", parentID)
			created = u
			return err
		}))
		chain = append(chain, created)
		id := created.ID()
		parentID = &id
	}
	return chain
}

func (f *pgEngineFixture) setThreshold(t *testing.T, userID uuid.UUID, threshold int) {
	t.Helper()
	require.NoError(t, composables.InTx(f.ctx, func(txCtx context.Context) error {
		_, err := f.engine.SetThreshold(txCtx, userID, threshold)
		return err
	}))
}

func (f *pgEngineFixture) setAvailability(t *testing.T, userID uuid.UUID, available bool) {
	t.Helper()
	require.NoError(t, composables.InTx(f.ctx, func(txCtx context.Context) error {
		return f.engine.SetAvailability(txCtx, userID, available)
	}))
}

func (f *pgEngineFixture) owned(t *testing.T, ownerID uuid.UUID) map[uuid.UUID]delegation.Delegation {
	t.Helper()

	rows, err := f.engine.ListAsOwner(f.ctx, ownerID)
	require.NoError(t, err)
	byDelegate := make(map[uuid.UUID]delegation.Delegation, len(rows))
	for _, row := range rows {
		byDelegate[row.DelegateID] = row
	}
	return byDelegate
}

func TestDelegationEngine_Postgres_PropagationAndReturn(t *testing.T) {
	f := newPgEngineFixture(t)

	chain := f.createChain(t, "owner", "deputy", "junior")
	owner, deputy, junior := chain[0], chain[1], chain[2]
	f.setThreshold(t, owner.ID(), 2)

	f.setAvailability(t, deputy.ID(), false)
	f.setAvailability(t, owner.ID(), false)

	ownerRows := f.owned(t, owner.ID())
	require.Len(t, ownerRows, 2)
	require.True(t, ownerRows[deputy.ID()].AutoPermanent())
	require.True(t, ownerRows[junior.ID()].AutoPermanent())

	f.setAvailability(t, deputy.ID(), true)

	ownerRows = f.owned(t, owner.ID())
	require.Len(t, ownerRows, 1)
	require.True(t, ownerRows[deputy.ID()].AutoPermanent())
	require.Empty(t, f.owned(t, deputy.ID()))
}

func TestDelegationRepository_Postgres_Constraints(t *testing.T) {
	f := newPgEngineFixture(t)

	chain := f.createChain(t, "owner", "deputy")
	owner, deputy := chain[0], chain[1]

	insert := func(d delegation.Delegation) error {
		return composables.InTx(f.ctx, func(txCtx context.Context) error {
			_, err := f.repo.Insert(txCtx, d)
			return err
		})
	}

	require.NoError(t, insert(delegation.Delegation{OwnerID: owner.ID(), DelegateID: deputy.ID()}))
	require.ErrorIs(t,
		insert(delegation.Delegation{OwnerID: owner.ID(), DelegateID: deputy.ID()}),
		delegation.ErrDuplicatePair)
	require.ErrorIs(t,
		insert(delegation.Delegation{OwnerID: owner.ID(), DelegateID: owner.ID()}),
		delegation.ErrSelfDelegation)
}

func TestSweeper_Postgres_RetiresExpiredRows(t *testing.T) {
	f := newPgEngineFixture(t)

	chain := f.createChain(t, "owner", "deputy", "junior")
	owner, deputy, junior := chain[0], chain[1], chain[2]

	past := time.Now().Add(-time.Hour).UTC()
	require.NoError(t, composables.InTx(f.ctx, func(txCtx context.Context) error {
		if _, err := f.repo.Insert(txCtx, delegation.Delegation{
			OwnerID: owner.ID(), DelegateID: deputy.ID(), ExpirationDate: &past,
		}); err != nil {
			return err
		}
		_, err := f.repo.Insert(txCtx, delegation.Delegation{
			OwnerID: owner.ID(), DelegateID: junior.ID(), ExpirationDate: &past, Bounded: true,
		})
		return err
	}))

	var swept int
	require.NoError(t, composables.InTx(f.ctx, func(txCtx context.Context) error {
		n, err := f.sweeper.Sweep(txCtx)
		swept = n
		return err
	}))
	require.Equal(t, 2, swept)

	rows := f.owned(t, owner.ID())
	require.Len(t, rows, 1)
	require.Nil(t, rows[junior.ID()].ExpirationDate)
	require.True(t, rows[junior.ID()].Bounded)
}
