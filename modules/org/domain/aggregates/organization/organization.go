package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	id        uuid.UUID
	name      string
	createdAt time.Time
}

func New(name string) Organization {
	return Organization{name: strings.TrimSpace(name)}
}

func Hydrate(id uuid.UUID, name string, createdAt time.Time) Organization {
	return Organization{id: id, name: name, createdAt: createdAt}
}

func (o Organization) ID() uuid.UUID        { return o.id }
func (o Organization) Name() string         { return o.name }
func (o Organization) CreatedAt() time.Time { return o.createdAt }
func (o Organization) IsZero() bool         { return o.id == uuid.Nil }
