package user

import "github.com/google/uuid"

type CreatedEvent struct {
	User User
}

type AvailabilityChangedEvent struct {
	UserID    uuid.UUID
	Available bool
}

type ThresholdChangedEvent struct {
	UserID    uuid.UUID
	Threshold int
}
