package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
	"github.com/standin-hq/standin/pkg/composables"
)

type OrganizationRepository struct{}

func NewOrganizationRepository() organization.Repository {
	return &OrganizationRepository{}
}

func (r *OrganizationRepository) Create(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	var (
		id        uuid.UUID
		createdAt time.Time
	)
	if err := tx.QueryRow(ctx, `
INSERT INTO organizations (name)
VALUES ($1)
RETURNING id, created_at
`, org.Name()).Scan(&id, &createdAt); err != nil {
		return organization.Organization{}, gerrors.Wrap(err, "create organization")
	}
	return organization.Hydrate(id, org.Name(), createdAt), nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return organization.Organization{}, err
	}

	var (
		name      string
		createdAt time.Time
	)
	if err := tx.QueryRow(ctx, `
SELECT name, created_at FROM organizations WHERE id = $1
`, id).Scan(&name, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrNotFound
		}
		return organization.Organization{}, err
	}
	return organization.Hydrate(id, name, createdAt), nil
}

func (r *OrganizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrNotFound
	}
	return nil
}
