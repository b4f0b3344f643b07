package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
	"github.com/standin-hq/standin/pkg/eventbus"
)

type UserService struct {
	users     user.Repository
	edges     hierarchy.Repository
	hierarchy *HierarchyService
	publisher eventbus.EventBus
}

func NewUserService(
	users user.Repository,
	edges hierarchy.Repository,
	hierarchyService *HierarchyService,
	publisher eventbus.EventBus,
) *UserService {
	return &UserService{
		users:     users,
		edges:     edges,
		hierarchy: hierarchyService,
		publisher: publisher,
	}
}

// Create inserts the user together with its depth-0 self edge and, when a
// parent is given, links it into the chart — all inside the caller's
// transaction scope.
func (s *UserService) Create(ctx context.Context, organizationID uuid.UUID, fullName, email string, parentID *uuid.UUID) (user.User, error) {
	created, err := s.users.Create(ctx, user.New(organizationID, fullName, email))
	if err != nil {
		return user.User{}, err
	}
	if err := s.edges.InsertSelfEdge(ctx, organizationID, created.ID()); err != nil {
		return user.User{}, err
	}
	if parentID != nil {
		if err := s.hierarchy.AddLink(ctx, organizationID, *parentID, created.ID()); err != nil {
			return user.User{}, err
		}
	}
	s.publisher.Publish(user.CreatedEvent{User: created})
	return created, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

// PotentialDelegates lists the users propagation could reach for this user:
// proper descendants within the delegation threshold.
func (s *UserService) PotentialDelegates(ctx context.Context, userID uuid.UUID) ([]hierarchy.DescendantRow, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.DelegationThreshold() < 1 {
		return nil, nil
	}
	return s.hierarchy.GetDescendants(ctx, userID, 1, u.DelegationThreshold(), false)
}
