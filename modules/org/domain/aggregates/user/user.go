package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	id                  uuid.UUID
	organizationID      uuid.UUID
	fullName            string
	email               string
	delegationThreshold int
	available           bool
	createdAt           time.Time
	updatedAt           time.Time
}

func New(organizationID uuid.UUID, fullName, email string) User {
	return User{
		organizationID: organizationID,
		fullName:       strings.TrimSpace(fullName),
		email:          strings.ToLower(strings.TrimSpace(email)),
		available:      true,
	}
}

func Hydrate(
	id uuid.UUID,
	organizationID uuid.UUID,
	fullName string,
	email string,
	delegationThreshold int,
	available bool,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:                  id,
		organizationID:      organizationID,
		fullName:            fullName,
		email:               email,
		delegationThreshold: delegationThreshold,
		available:           available,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

func (u User) ID() uuid.UUID             { return u.id }
func (u User) OrganizationID() uuid.UUID { return u.organizationID }
func (u User) FullName() string          { return u.fullName }
func (u User) Email() string             { return u.email }
func (u User) DelegationThreshold() int  { return u.delegationThreshold }
func (u User) Available() bool           { return u.available }
func (u User) CreatedAt() time.Time      { return u.createdAt }
func (u User) UpdatedAt() time.Time      { return u.updatedAt }
func (u User) IsZero() bool              { return u.id == uuid.Nil }
