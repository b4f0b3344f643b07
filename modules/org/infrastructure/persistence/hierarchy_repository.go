package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
	"github.com/standin-hq/standin/pkg/composables"
)

type HierarchyRepository struct{}

func NewHierarchyRepository() hierarchy.Repository {
	return &HierarchyRepository{}
}

func (r *HierarchyRepository) InsertSelfEdge(ctx context.Context, organizationID, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO user_hierarchy (organization_id, ancestor_id, descendant_id, depth)
VALUES ($1, $2, $2, 0)
`, organizationID, userID); err != nil {
		return gerrors.Wrap(err, "insert self edge")
	}
	return nil
}

func (r *HierarchyRepository) InsertEdges(ctx context.Context, edges []hierarchy.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{e.OrganizationID, e.AncestorID, e.DescendantID, e.Depth})
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"user_hierarchy"},
		[]string{"organization_id", "ancestor_id", "descendant_id", "depth"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return gerrors.Wrap(err, "insert closure edges")
	}
	return nil
}

func (r *HierarchyRepository) PathExists(ctx context.Context, organizationID, ancestorID, descendantID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS(
	SELECT 1
	FROM user_hierarchy
	WHERE organization_id = $1 AND ancestor_id = $2 AND descendant_id = $3
)
`, organizationID, ancestorID, descendantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *HierarchyRepository) AncestorEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return r.queryEdges(ctx, `
SELECT organization_id, ancestor_id, descendant_id, depth
FROM user_hierarchy
WHERE organization_id = $1 AND descendant_id = $2
`, organizationID, userID)
}

func (r *HierarchyRepository) DescendantEdges(ctx context.Context, organizationID, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return r.queryEdges(ctx, `
SELECT organization_id, ancestor_id, descendant_id, depth
FROM user_hierarchy
WHERE organization_id = $1 AND ancestor_id = $2
`, organizationID, userID)
}

func (r *HierarchyRepository) AncestorsOf(ctx context.Context, userID uuid.UUID) ([]hierarchy.Edge, error) {
	return r.queryEdges(ctx, `
SELECT organization_id, ancestor_id, descendant_id, depth
FROM user_hierarchy
WHERE descendant_id = $1
`, userID)
}

func (r *HierarchyRepository) queryEdges(ctx context.Context, sql string, args ...any) ([]hierarchy.Edge, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hierarchy.Edge, 0, 8)
	for rows.Next() {
		var e hierarchy.Edge
		if err := rows.Scan(&e.OrganizationID, &e.AncestorID, &e.DescendantID, &e.Depth); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *HierarchyRepository) DeleteEdgePairs(ctx context.Context, organizationID uuid.UUID, ancestorIDs, descendantIDs []uuid.UUID) error {
	if len(ancestorIDs) == 0 || len(descendantIDs) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
DELETE FROM user_hierarchy
WHERE organization_id = $1
  AND ancestor_id = ANY($2)
  AND descendant_id = ANY($3)
`, organizationID, ancestorIDs, descendantIDs)
	return err
}

func (r *HierarchyRepository) Depth(ctx context.Context, ancestorID, descendantID uuid.UUID) (int, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, false, err
	}

	var depth int
	if err := tx.QueryRow(ctx, `
SELECT depth FROM user_hierarchy WHERE ancestor_id = $1 AND descendant_id = $2
`, ancestorID, descendantID).Scan(&depth); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return depth, true, nil
}

func (r *HierarchyRepository) Descendants(ctx context.Context, ancestorID uuid.UUID, minDepth, maxDepth int, availableOnly bool) ([]hierarchy.DescendantRow, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	sql := `
SELECT u.id, u.organization_id, u.full_name, u.email, u.delegation_threshold, u.available, u.created_at, u.updated_at, uh.depth
FROM user_hierarchy uh
JOIN users u ON u.id = uh.descendant_id
WHERE uh.ancestor_id = $1
  AND uh.depth >= $2
  AND uh.depth <= $3
`
	if availableOnly {
		sql += "  AND u.available\n"
	}
	sql += "ORDER BY uh.depth ASC"

	rows, err := tx.Query(ctx, sql, ancestorID, minDepth, maxDepth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hierarchy.DescendantRow, 0, 16)
	for rows.Next() {
		var (
			id                  uuid.UUID
			organizationID      uuid.UUID
			fullName            string
			email               string
			delegationThreshold int
			available           bool
			createdAt, updated  time.Time
			depth               int
		)
		if err := rows.Scan(&id, &organizationID, &fullName, &email, &delegationThreshold, &available, &createdAt, &updated, &depth); err != nil {
			return nil, err
		}
		out = append(out, hierarchy.DescendantRow{
			User:  user.Hydrate(id, organizationID, fullName, email, delegationThreshold, available, createdAt, updated),
			Depth: depth,
		})
	}
	return out, rows.Err()
}
