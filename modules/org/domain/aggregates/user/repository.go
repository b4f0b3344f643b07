package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("user email already taken")
)

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	UpdateThreshold(ctx context.Context, id uuid.UUID, threshold int) (User, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error
}
