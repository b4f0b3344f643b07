package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/presentation/dtos"
	"github.com/standin-hq/standin/modules/org/services"
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/composables"
)

var validate = validator.New()

type OrgAPIController struct {
	orgs      *services.OrganizationService
	users     *services.UserService
	hierarchy *services.HierarchyService
}

func NewOrgAPIController(app application.Application) application.Controller {
	return &OrgAPIController{
		orgs:      app.Service(services.OrganizationService{}).(*services.OrganizationService),
		users:     app.Service(services.UserService{}).(*services.UserService),
		hierarchy: app.Service(services.HierarchyService{}).(*services.HierarchyService),
	}
}

func (c *OrgAPIController) Key() string {
	return "/org"
}

func (c *OrgAPIController) Register(r *mux.Router) {
	r.HandleFunc("/organizations", c.CreateOrganization).Methods(http.MethodPost)
	r.HandleFunc("/organizations/{id}", c.DeleteOrganization).Methods(http.MethodDelete)

	r.HandleFunc("/users", c.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/link", c.LinkUsers).Methods(http.MethodPut)
	r.HandleFunc("/users/unlink", c.UnlinkUsers).Methods(http.MethodDelete)
	r.HandleFunc("/users/potential_delegates", c.PotentialDelegates).Methods(http.MethodGet)
}

type createOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

func (c *OrgAPIController) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var created organization.Organization
	err := composables.InTx(r.Context(), func(ctx context.Context) error {
		var err error
		created, err = c.orgs.Create(ctx, req.Name)
		return err
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}{created.ID(), created.Name(), created.CreatedAt()})
}

func (c *OrgAPIController) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "organization id must be a uuid")
		return
	}

	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.orgs.Delete(ctx, id)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "organization was properly deleted"})
}

type createUserRequest struct {
	FullName       string     `json:"fullname" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	OrganizationID uuid.UUID  `json:"organization_id" validate:"required"`
	ParentID       *uuid.UUID `json:"parent_id"`
}

func (c *OrgAPIController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var created user.User
	err := composables.InTx(r.Context(), func(ctx context.Context) error {
		var err error
		created, err = c.users.Create(ctx, req.OrganizationID, req.FullName, req.Email, req.ParentID)
		return err
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string            `json:"message"`
		User    dtos.UserResponse `json:"user_data"`
	}{"user was properly created", dtos.FromUser(created)})
}

type linkRequest struct {
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
	ParentID       uuid.UUID `json:"parent_id" validate:"required"`
	ChildID        uuid.UUID `json:"child_id" validate:"required"`
}

func (c *OrgAPIController) LinkUsers(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err := composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.hierarchy.AddLink(ctx, req.OrganizationID, req.ParentID, req.ChildID)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "users were properly linked"})
}

func (c *OrgAPIController) UnlinkUsers(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err := composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.hierarchy.RemoveLink(ctx, req.OrganizationID, req.ParentID, req.ChildID)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "users were properly unlinked"})
}

func (c *OrgAPIController) PotentialDelegates(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_QUERY", "user_id must be a uuid")
		return
	}

	rows, err := c.users.PotentialDelegates(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Users []dtos.DescendantResponse `json:"users"`
	}{dtos.FromDescendants(rows)})
}
