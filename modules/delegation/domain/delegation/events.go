package delegation

import "github.com/google/uuid"

type CreatedEvent struct {
	Delegation Delegation
}

type RevokedEvent struct {
	OwnerID    uuid.UUID
	DelegateID uuid.UUID
}
