package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusSigned  Status = "signed"
)

type Permission string

const (
	PermissionRead Permission = "read"
	PermissionSign Permission = "sign"
)

type Document struct {
	id        uuid.UUID
	filename  string
	createdBy uuid.UUID
	status    Status
	createdAt time.Time
}

func New(filename string, createdBy uuid.UUID) Document {
	return Document{
		filename:  strings.TrimSpace(filename),
		createdBy: createdBy,
		status:    StatusDraft,
	}
}

func Hydrate(id uuid.UUID, filename string, createdBy uuid.UUID, status Status, createdAt time.Time) Document {
	return Document{
		id:        id,
		filename:  filename,
		createdBy: createdBy,
		status:    status,
		createdAt: createdAt,
	}
}

func (d Document) ID() uuid.UUID        { return d.id }
func (d Document) Filename() string     { return d.filename }
func (d Document) CreatedBy() uuid.UUID { return d.createdBy }
func (d Document) Status() Status       { return d.status }
func (d Document) CreatedAt() time.Time { return d.createdAt }
func (d Document) IsZero() bool         { return d.id == uuid.Nil }

// UserLink grants a user a permission on a document. Sign links record who
// actually signed and when; a delegate may sign on the link holder's behalf.
type UserLink struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	Permission Permission
	SignedBy   *uuid.UUID
	SignedAt   *time.Time
}
