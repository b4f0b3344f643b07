package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
)

type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	OrganizationID      uuid.UUID `json:"organization_id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	DelegationThreshold int       `json:"delegation_threshold"`
	Available           bool      `json:"available"`
	CreatedAt           time.Time `json:"created_at"`
}

func FromUser(u user.User) UserResponse {
	return UserResponse{
		ID:                  u.ID(),
		OrganizationID:      u.OrganizationID(),
		FullName:            u.FullName(),
		Email:               u.Email(),
		DelegationThreshold: u.DelegationThreshold(),
		Available:           u.Available(),
		CreatedAt:           u.CreatedAt(),
	}
}

type DescendantResponse struct {
	UserResponse
	Depth int `json:"depth"`
}

func FromDescendants(rows []hierarchy.DescendantRow) []DescendantResponse {
	out := make([]DescendantResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, DescendantResponse{UserResponse: FromUser(row.User), Depth: row.Depth})
	}
	return out
}
