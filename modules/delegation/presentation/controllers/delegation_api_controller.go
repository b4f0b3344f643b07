package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/delegation/services"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	orgdtos "github.com/standin-hq/standin/modules/org/presentation/dtos"
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/composables"
)

var validate = validator.New()

type DelegationAPIController struct {
	engine *services.DelegationService
}

func NewDelegationAPIController(app application.Application) application.Controller {
	return &DelegationAPIController{
		engine: app.Service(services.DelegationService{}).(*services.DelegationService),
	}
}

func (c *DelegationAPIController) Key() string {
	return "/delegations"
}

func (c *DelegationAPIController) Register(r *mux.Router) {
	r.HandleFunc("/users/{id}/delegation_threshold", c.SetThreshold).Methods(http.MethodPut)
	r.HandleFunc("/users/{id}/availability", c.SetAvailability).Methods(http.MethodPut)

	r.HandleFunc("/delegations/create", c.Create).Methods(http.MethodPut)
	r.HandleFunc("/delegations", c.List).Methods(http.MethodGet)
	r.HandleFunc("/delegations/revoke", c.Revoke).Methods(http.MethodDelete)
}

type delegationResponse struct {
	OwnerID        uuid.UUID  `json:"user_id_owner"`
	DelegateID     uuid.UUID  `json:"user_id_delegate"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Bounded        bool       `json:"bounded"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toDelegationResponse(d delegation.Delegation) delegationResponse {
	return delegationResponse{
		OwnerID:        d.OwnerID,
		DelegateID:     d.DelegateID,
		ExpirationDate: d.ExpirationDate,
		Bounded:        d.Bounded,
		CreatedAt:      d.CreatedAt,
	}
}

type setThresholdRequest struct {
	DelegationThreshold int `json:"delegation_threshold" validate:"gte=0"`
}

func (c *DelegationAPIController) SetThreshold(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "user id must be a uuid")
		return
	}
	var req setThresholdRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	var updated user.User
	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		var err error
		updated, err = c.engine.SetThreshold(ctx, userID, req.DelegationThreshold)
		return err
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User orgdtos.UserResponse `json:"user"`
	}{orgdtos.FromUser(updated)})
}

type setAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

func (c *DelegationAPIController) SetAvailability(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "user id must be a uuid")
		return
	}
	var req setAvailabilityRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	available := *req.Available
	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.engine.SetAvailability(ctx, userID, available)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	state := "unavailable"
	if available {
		state = "available"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %s is now %s", userID, state),
	})
}

type createDelegationRequest struct {
	OwnerID    uuid.UUID `json:"user_id" validate:"required"`
	DelegateID uuid.UUID `json:"delegated_user_id" validate:"required"`
	Duration   string    `json:"duration" validate:"required"`
}

func (c *DelegationAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var req createDelegationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	ttl, err := parseDuration(req.Duration)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	expiration := time.Now().UTC().Add(ttl)

	var created delegation.Delegation
	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		var err error
		created, err = c.engine.Create(ctx, delegation.Delegation{
			OwnerID:        req.OwnerID,
			DelegateID:     req.DelegateID,
			ExpirationDate: &expiration,
		}, true)
		return err
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Delegation delegationResponse `json:"delegation"`
	}{toDelegationResponse(created)})
}

func (c *DelegationAPIController) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_QUERY", "user_id must be a uuid")
		return
	}

	rows, err := c.engine.ListAsOwner(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]delegationResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, toDelegationResponse(d))
	}
	writeJSON(w, http.StatusOK, struct {
		Delegations []delegationResponse `json:"delegations"`
	}{out})
}

type revokeDelegationRequest struct {
	OwnerID    uuid.UUID `json:"user_id" validate:"required"`
	DelegateID uuid.UUID `json:"delegated_user_id" validate:"required"`
}

func (c *DelegationAPIController) Revoke(w http.ResponseWriter, r *http.Request) {
	var req revokeDelegationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err := composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.engine.Revoke(ctx, req.OwnerID, req.DelegateID)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "delegation was properly revoked"})
}
