package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
)

type OrganizationService struct {
	repo organization.Repository
}

func NewOrganizationService(repo organization.Repository) *OrganizationService {
	return &OrganizationService{repo: repo}
}

func (s *OrganizationService) Create(ctx context.Context, name string) (organization.Organization, error) {
	return s.repo.Create(ctx, organization.New(name))
}

func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (organization.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrganizationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
