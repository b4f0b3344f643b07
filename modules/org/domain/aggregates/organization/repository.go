package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("organization not found")

type Repository interface {
	Create(ctx context.Context, org Organization) (Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	// Delete removes the organization; users and hierarchy rows go with it
	// through the schema's ON DELETE CASCADE.
	Delete(ctx context.Context, id uuid.UUID) error
}
