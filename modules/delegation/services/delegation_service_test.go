package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
)

func TestCreate_RejectsSelfDelegation(t *testing.T) {
	f := newEngineFixture(t)
	owner := f.mustCreateUser(t, "owner", nil)

	_, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:    owner.ID(),
		DelegateID: owner.ID(),
	}, false)
	require.ErrorIs(t, err, delegation.ErrSelfDelegation)
}

func TestCreate_IsIdempotentWithOverwrite(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "delegate")
	owner, delegate := chain[0], chain[1]

	d := delegation.Delegation{OwnerID: owner.ID(), DelegateID: delegate.ID(), Bounded: true}

	_, err := f.engine.Create(f.ctx, d, true)
	require.NoError(t, err)
	_, err = f.engine.Create(f.ctx, d, true)
	require.NoError(t, err)

	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.True(t, owned[delegate.ID()].Bounded)
	require.Nil(t, owned[delegate.ID()].ExpirationDate)
}

func TestCreate_WithoutOverwriteKeepsExisting(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "delegate")
	owner, delegate := chain[0], chain[1]

	exp := time.Now().Add(24 * time.Hour).UTC()
	_, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     delegate.ID(),
		ExpirationDate: &exp,
	}, false)
	require.NoError(t, err)

	got, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:    owner.ID(),
		DelegateID: delegate.ID(),
		Bounded:    true,
	}, false)
	require.NoError(t, err)
	require.False(t, got.Bounded)
	require.NotNil(t, got.ExpirationDate)
}

func TestCreate_OverwriteTouchesOneField(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "delegate")
	owner, delegate := chain[0], chain[1]

	exp := time.Now().Add(24 * time.Hour).UTC()
	_, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     delegate.ID(),
		ExpirationDate: &exp,
	}, false)
	require.NoError(t, err)

	// An expiry-free overwrite is an automation write: it flips the bounded
	// flag and must not clear the manually set expiration.
	got, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:    owner.ID(),
		DelegateID: delegate.ID(),
		Bounded:    true,
	}, true)
	require.NoError(t, err)
	require.True(t, got.Bounded)
	require.NotNil(t, got.ExpirationDate)
	require.Equal(t, exp, got.ExpirationDate.UTC())

	// A write carrying an expiration is a manual extension: it moves the
	// expiration and must not touch the bounded flag.
	later := exp.Add(48 * time.Hour)
	got, err = f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     delegate.ID(),
		ExpirationDate: &later,
	}, true)
	require.NoError(t, err)
	require.True(t, got.Bounded)
	require.Equal(t, later, got.ExpirationDate.UTC())
}

func TestRevoke_RemovesPair(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "delegate")
	owner, delegate := chain[0], chain[1]

	_, err := f.engine.Create(f.ctx, delegation.Delegation{OwnerID: owner.ID(), DelegateID: delegate.ID()}, false)
	require.NoError(t, err)

	require.NoError(t, f.engine.Revoke(f.ctx, owner.ID(), delegate.ID()))
	require.Empty(t, f.mustOwned(t, owner.ID()))

	// Revoking a pair that is already gone is a no-op.
	require.NoError(t, f.engine.Revoke(f.ctx, owner.ID(), delegate.ID()))
	require.Empty(t, f.mustOwned(t, owner.ID()))
}

func TestPropagation_ThresholdCapsDepth(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "d1", "d2", "d3", "d4")
	owner := chain[0]

	f.mustSetThreshold(t, owner.ID(), 3)
	// Everyone within the threshold is away; the only available substitute
	// sits one hop past it and must never be reached.
	f.markUnavailable(t, chain[1].ID(), chain[2].ID(), chain[3].ID())

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), false))

	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 3)
	for _, u := range chain[1:4] {
		d, ok := owned[u.ID()]
		require.True(t, ok, "expected a delegation for %s", u.FullName())
		require.True(t, d.AutoPermanent())
	}
	require.NotContains(t, owned, chain[4].ID())
}

func TestPropagation_StopsAtFirstAvailableDepth(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "d1", "d2", "d3", "d4", "d5")
	owner := chain[0]

	f.mustSetThreshold(t, owner.ID(), 5)
	f.markUnavailable(t, chain[1].ID())

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), false))

	// Depth 1 is away but still recorded; depth 2 is available and stops the
	// walk before depths 3 to 5.
	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 2)
	require.Contains(t, owned, chain[1].ID())
	require.Contains(t, owned, chain[2].ID())
}

func TestPropagation_SkipsOwnerWithExistingDelegations(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "d1", "d2")
	owner := chain[0]

	f.mustSetThreshold(t, owner.ID(), 2)
	_, err := f.engine.Create(f.ctx, delegation.Delegation{
		OwnerID:    owner.ID(),
		DelegateID: chain[2].ID(),
	}, false)
	require.NoError(t, err)

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), false))

	// A manually arranged substitute suppresses propagation entirely.
	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.Contains(t, owned, chain[2].ID())
}

func TestAvailability_AbsentDelegateExtendsOwnersChain(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b", "c")
	owner, b, c := chain[0], chain[1], chain[2]

	f.mustSetThreshold(t, owner.ID(), 3)
	f.mustSetThreshold(t, b.ID(), 2)

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), false))
	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.Contains(t, owned, b.ID())

	// The standing-in delegate goes away too: the owner's chain extends past
	// it, and the delegate starts a chain of its own.
	require.NoError(t, f.engine.SetAvailability(f.ctx, b.ID(), false))

	owned = f.mustOwned(t, owner.ID())
	require.Len(t, owned, 2)
	require.Contains(t, owned, b.ID())
	require.Contains(t, owned, c.ID())

	bOwned := f.mustOwned(t, b.ID())
	require.Len(t, bOwned, 1)
	require.Contains(t, bOwned, c.ID())
}

func TestAvailability_ReturnRetractsOverPropagation(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b", "c")
	owner, b := chain[0], chain[1]

	f.mustSetThreshold(t, owner.ID(), 3)
	f.mustSetThreshold(t, b.ID(), 2)

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), false))
	require.NoError(t, f.engine.SetAvailability(f.ctx, b.ID(), false))

	require.NoError(t, f.engine.SetAvailability(f.ctx, b.ID(), true))

	// b is a valid stopping point again: the owner's deeper substitute is
	// retracted, b's own chain is cleared.
	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.Contains(t, owned, b.ID())
	require.True(t, owned[b.ID()].AutoPermanent())

	require.Empty(t, f.mustOwned(t, b.ID()))
}

func TestAvailability_ReturnDemotesTimeboxedAndDeletesAuto(t *testing.T) {
	f := newEngineFixture(t)
	chain := f.mustCreateChain(t, "owner", "b", "c")
	owner, b, c := chain[0], chain[1], chain[2]

	exp := time.Now().Add(24 * time.Hour).UTC()
	_, err := f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:    owner.ID(),
		DelegateID: b.ID(),
		Bounded:    true,
	})
	require.NoError(t, err)
	_, err = f.store.Insert(f.ctx, delegation.Delegation{
		OwnerID:        owner.ID(),
		DelegateID:     c.ID(),
		Bounded:        true,
		ExpirationDate: &exp,
	})
	require.NoError(t, err)

	require.NoError(t, f.engine.SetAvailability(f.ctx, owner.ID(), true))

	owned := f.mustOwned(t, owner.ID())
	require.Len(t, owned, 1)
	require.NotContains(t, owned, b.ID())
	require.False(t, owned[c.ID()].Bounded)
	require.NotNil(t, owned[c.ID()].ExpirationDate)
}
