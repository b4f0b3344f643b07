package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/pkg/composables"
	"github.com/standin-hq/standin/pkg/repo"
)

type UserRepository struct{}

func NewUserRepository() user.Repository {
	return &UserRepository{}
}

const userColumns = `id, organization_id, full_name, email, delegation_threshold, available, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var (
		id                  uuid.UUID
		organizationID      uuid.UUID
		fullName            string
		email               string
		delegationThreshold int
		available           bool
		createdAt, updated  time.Time
	)
	if err := row.Scan(&id, &organizationID, &fullName, &email, &delegationThreshold, &available, &createdAt, &updated); err != nil {
		return user.User{}, err
	}
	return user.Hydrate(id, organizationID, fullName, email, delegationThreshold, available, createdAt, updated), nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	created, err := scanUser(tx.QueryRow(ctx, `
INSERT INTO users (organization_id, full_name, email)
VALUES ($1, $2, $3)
RETURNING `+userColumns,
		u.OrganizationID(), u.FullName(), u.Email()))
	if err != nil {
		if isPgCode(err, pgUniqueViolation) {
			return user.User{}, user.ErrEmailTaken
		}
		if isPgCode(err, pgForeignKeyViolation) {
			return user.User{}, gerrors.Wrap(err, "organization does not exist")
		}
		return user.User{}, gerrors.Wrap(err, "create user")
	}
	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UserRepository) UpdateThreshold(ctx context.Context, id uuid.UUID, threshold int) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	u, err := scanUser(tx.QueryRow(ctx, `
UPDATE users
SET delegation_threshold = $2, updated_at = now()
WHERE id = $1
RETURNING `+userColumns, id, threshold))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UserRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	return execExpectingRow(ctx, tx, `
UPDATE users SET available = $2, updated_at = now() WHERE id = $1
`, user.ErrNotFound, id, available)
}

func execExpectingRow(ctx context.Context, tx repo.Tx, sql string, missing error, args ...any) error {
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return missing
	}
	return nil
}
