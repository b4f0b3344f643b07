package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
)

func TestSweep_RetiresExpiredRows(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b", "c")
	owner, b, c := chain[0], chain[1], chain[2]

	past := time.Now().Add(-time.Hour).UTC()

	// A lapsed manual delegation disappears; a lapsed automatic one keeps the
	// substitute and only sheds its expiration.
	_, err := f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     b.ID(),
		ExpirationDate: &past,
	})
	require.NoError(t, err)
	_, err = f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     c.ID(),
		ExpirationDate: &past,
		Bounded:        true,
	})
	require.NoError(t, err)

	swept, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 2, swept)

	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.NotContains(t, owned, b.ID())
	require.True(t, owned[c.ID()].Bounded)
	require.Nil(t, owned[c.ID()].ExpirationDate)
}

func TestSweep_LeavesUnexpiredRowsAlone(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b")
	owner, b := chain[0], chain[1]

	future := time.Now().Add(time.Hour).UTC()
	_, err := f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     b.ID(),
		ExpirationDate: &future,
	})
	require.NoError(t, err)

	swept, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	require.Zero(t, swept)
	require.Len(t, f.mustOwned(t, owner.ID()), 1)
}

func TestSweep_RepropagatesForAbsentUncoveredOwner(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b")
	owner, b := chain[0], chain[1]

	f.mustSetThreshold(t, owner.ID(), 1)
	f.markUnavailable(t, owner.ID())

	past := time.Now().Add(-time.Hour).UTC()
	_, err := f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     b.ID(),
		ExpirationDate: &past,
	})
	require.NoError(t, err)

	swept, err := f.sweeper.Sweep(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 1, swept)

	// The lapsed manual row left the absent owner uncovered, so the chain is
	// rebuilt automatically.
	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.True(t, owned[b.ID()].AutoPermanent())
}
