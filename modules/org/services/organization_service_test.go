package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
	"github.com/standin-hq/standin/modules/org/infrastructure/memory"
)

func TestOrganizationService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewOrganizationService(memory.NewOrganizationStore())

	created, err := svc.Create(ctx, "  Acme  ")
	require.NoError(t, err)
	require.Equal(t, "Acme", created.Name())
	require.NotEqual(t, uuid.Nil, created.ID())

	got, err := svc.GetByID(ctx, created.ID())
	require.NoError(t, err)
	require.Equal(t, created.ID(), got.ID())

	require.NoError(t, svc.Delete(ctx, created.ID()))
	_, err = svc.GetByID(ctx, created.ID())
	require.ErrorIs(t, err, organization.ErrNotFound)

	err = svc.Delete(ctx, uuid.New())
	require.ErrorIs(t, err, organization.ErrNotFound)
}
