package document

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicateLink = errors.New("user already holds this permission on the document")
)

type Repository interface {
	Create(ctx context.Context, d Document) (Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (Document, error)
	IsOwner(ctx context.Context, userID, documentID uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, documentID uuid.UUID, status Status) error

	InsertLinks(ctx context.Context, links []UserLink) error

	// PendingSignatures returns documents with an unsigned sign link held by
	// userID directly, or held by an owner who delegates to userID.
	PendingSignatures(ctx context.Context, userID uuid.UUID) ([]Document, error)

	// SignerPrincipals returns the sign-link holders of the document that
	// userID may sign for: userID itself when it holds a link, plus every
	// holder that delegates to userID.
	SignerPrincipals(ctx context.Context, documentID, userID uuid.UUID) ([]uuid.UUID, error)

	// MarkSigned stamps the holder's sign link with the signing user.
	MarkSigned(ctx context.Context, documentID, holderID, signedBy uuid.UUID, signedAt time.Time) error

	// HasUnsignedLinks reports whether any sign link on the document is
	// still unsigned.
	HasUnsignedLinks(ctx context.Context, documentID uuid.UUID) (bool, error)
}

// Storage is the object store holding document contents, keyed by document
// id.
type Storage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectName string) error
}
