package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/standin-hq/standin/modules/document/domain/document"
	"github.com/standin-hq/standin/pkg/composables"
)

const pgUniqueViolation = "23505"

const documentColumns = "id, filename, created_by, status, created_at"

type DocumentRepository struct{}

func NewDocumentRepository() document.Repository {
	return &DocumentRepository{}
}

func scanDocument(row pgx.Row) (document.Document, error) {
	var (
		id        uuid.UUID
		filename  string
		createdBy uuid.UUID
		status    document.Status
		createdAt time.Time
	)
	if err := row.Scan(&id, &filename, &createdBy, &status, &createdAt); err != nil {
		return document.Document{}, err
	}
	return document.Hydrate(id, filename, createdBy, status, createdAt), nil
}

func (r *DocumentRepository) Create(ctx context.Context, d document.Document) (document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return document.Document{}, err
	}

	created, err := scanDocument(tx.QueryRow(ctx, `
INSERT INTO documents (filename, created_by, status)
VALUES ($1, $2, $3)
RETURNING `+documentColumns+`
`, d.Filename(), d.CreatedBy(), d.Status()))
	if err != nil {
		return document.Document{}, gerrors.Wrap(err, "insert document")
	}
	return created, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return document.Document{}, err
	}

	d, err := scanDocument(tx.QueryRow(ctx, `
SELECT `+documentColumns+` FROM documents WHERE id = $1
`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return document.Document{}, document.ErrNotFound
	}
	return d, err
}

func (r *DocumentRepository) IsOwner(ctx context.Context, userID, documentID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var owner bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1 AND created_by = $2)
`, documentID, userID).Scan(&owner); err != nil {
		return false, err
	}
	return owner, nil
}

func (r *DocumentRepository) SetStatus(ctx context.Context, documentID uuid.UUID, status document.Status) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE documents SET status = $2 WHERE id = $1
`, documentID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) InsertLinks(ctx context.Context, links []document.UserLink) error {
	if len(links) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(`
INSERT INTO document_user_links (document_id, user_id, permission)
VALUES ($1, $2, $3)
`, l.DocumentID, l.UserID, l.Permission)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range links {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return document.ErrDuplicateLink
			}
			return gerrors.Wrap(err, "insert document links")
		}
	}
	return results.Close()
}

func (r *DocumentRepository) PendingSignatures(ctx context.Context, userID uuid.UUID) ([]document.Document, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT DISTINCT d.id, d.filename, d.created_by, d.status, d.created_at
FROM documents d
JOIN document_user_links l ON l.document_id = d.id
WHERE d.status = 'pending'
  AND l.permission = 'sign'
  AND l.signed_by IS NULL
  AND (
	l.user_id = $1
	OR l.user_id IN (SELECT owner_id FROM delegations WHERE delegate_id = $1)
  )
ORDER BY d.created_at
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]document.Document, 0, 4)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) SignerPrincipals(ctx context.Context, documentID, userID uuid.UUID) ([]uuid.UUID, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT l.user_id
FROM document_user_links l
WHERE l.document_id = $1
  AND l.permission = 'sign'
  AND l.signed_by IS NULL
  AND (
	l.user_id = $2
	OR l.user_id IN (SELECT owner_id FROM delegations WHERE delegate_id = $2)
  )
`, documentID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0, 2)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) MarkSigned(ctx context.Context, documentID, holderID, signedBy uuid.UUID, signedAt time.Time) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE document_user_links
SET signed_by = $3, signed_at = $4
WHERE document_id = $1 AND user_id = $2 AND permission = 'sign' AND signed_by IS NULL
`, documentID, holderID, signedBy, signedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) HasUnsignedLinks(ctx context.Context, documentID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var unsigned bool
	if err := tx.QueryRow(ctx, `
SELECT EXISTS(
	SELECT 1 FROM document_user_links
	WHERE document_id = $1 AND permission = 'sign' AND signed_by IS NULL
)
`, documentID).Scan(&unsigned); err != nil {
		return false, err
	}
	return unsigned, nil
}
