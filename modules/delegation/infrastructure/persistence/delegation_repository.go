package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/pkg/composables"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const delegationColumns = "owner_id, delegate_id, expiration_date, bounded, created_at"

type DelegationRepository struct{}

func NewDelegationRepository() delegation.Repository {
	return &DelegationRepository{}
}

func scanDelegation(row pgx.Row) (delegation.Delegation, error) {
	var d delegation.Delegation
	err := row.Scan(&d.OwnerID, &d.DelegateID, &d.ExpirationDate, &d.Bounded, &d.CreatedAt)
	return d, err
}

func (r *DelegationRepository) GetByPair(ctx context.Context, ownerID, delegateID uuid.UUID) (delegation.Delegation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return delegation.Delegation{}, err
	}

	d, err := scanDelegation(tx.QueryRow(ctx, `
SELECT `+delegationColumns+`
FROM delegations
WHERE owner_id = $1 AND delegate_id = $2
`, ownerID, delegateID))
	if errors.Is(err, pgx.ErrNoRows) {
		return delegation.Delegation{}, delegation.ErrNotFound
	}
	return d, err
}

func (r *DelegationRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]delegation.Delegation, error) {
	return r.list(ctx, `
SELECT `+delegationColumns+`
FROM delegations
WHERE owner_id = $1
ORDER BY created_at
`, ownerID)
}

func (r *DelegationRepository) ListByDelegate(ctx context.Context, delegateID uuid.UUID, boundedOnly bool) ([]delegation.Delegation, error) {
	sql := `
SELECT ` + delegationColumns + `
FROM delegations
WHERE delegate_id = $1
`
	if boundedOnly {
		sql += "  AND bounded\n"
	}
	sql += "ORDER BY created_at"
	return r.list(ctx, sql, delegateID)
}

func (r *DelegationRepository) list(ctx context.Context, sql string, args ...any) ([]delegation.Delegation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]delegation.Delegation, 0, 4)
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DelegationRepository) Insert(ctx context.Context, d delegation.Delegation) (delegation.Delegation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return delegation.Delegation{}, err
	}

	inserted, err := scanDelegation(tx.QueryRow(ctx, `
INSERT INTO delegations (owner_id, delegate_id, expiration_date, bounded)
VALUES ($1, $2, $3, $4)
RETURNING `+delegationColumns+`
`, d.OwnerID, d.DelegateID, d.ExpirationDate, d.Bounded))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return delegation.Delegation{}, delegation.ErrDuplicatePair
			case pgCheckViolation:
				return delegation.Delegation{}, delegation.ErrSelfDelegation
			}
		}
		return delegation.Delegation{}, gerrors.Wrap(err, "insert delegation")
	}
	return inserted, nil
}

func (r *DelegationRepository) SetBounded(ctx context.Context, ownerID, delegateID uuid.UUID, bounded bool) error {
	return r.updatePair(ctx, `
UPDATE delegations SET bounded = $3 WHERE owner_id = $1 AND delegate_id = $2
`, ownerID, delegateID, bounded)
}

func (r *DelegationRepository) SetExpiration(ctx context.Context, ownerID, delegateID uuid.UUID, expiration *time.Time) error {
	return r.updatePair(ctx, `
UPDATE delegations SET expiration_date = $3 WHERE owner_id = $1 AND delegate_id = $2
`, ownerID, delegateID, expiration)
}

func (r *DelegationRepository) updatePair(ctx context.Context, sql string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return delegation.ErrNotFound
	}
	return nil
}

// DeletePair is unconditional: deleting a pair that does not exist is a
// no-op, so revokes are idempotent.
func (r *DelegationRepository) DeletePair(ctx context.Context, ownerID, delegateID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
DELETE FROM delegations WHERE owner_id = $1 AND delegate_id = $2
`, ownerID, delegateID)
	return err
}

func (r *DelegationRepository) DeleteAutoPermanentByOwner(ctx context.Context, ownerID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
DELETE FROM delegations
WHERE owner_id = $1 AND bounded AND expiration_date IS NULL
`, ownerID)
	return err
}

func (r *DelegationRepository) DemoteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE delegations SET bounded = false WHERE owner_id = $1 AND bounded
`, ownerID)
	return err
}

func (r *DelegationRepository) ListExpired(ctx context.Context, now time.Time) ([]delegation.ExpiredRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT d.owner_id, d.delegate_id, d.expiration_date, d.bounded, d.created_at, u.available
FROM delegations d
JOIN users u ON u.id = d.owner_id
WHERE d.expiration_date IS NOT NULL AND d.expiration_date < $1
`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]delegation.ExpiredRow, 0, 4)
	for rows.Next() {
		var row delegation.ExpiredRow
		if err := rows.Scan(&row.OwnerID, &row.DelegateID, &row.ExpirationDate, &row.Bounded, &row.CreatedAt, &row.OwnerAvailable); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
