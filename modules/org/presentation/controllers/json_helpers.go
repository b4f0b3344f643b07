package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/standin-hq/standin/modules/org/domain/aggregates/organization"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/modules/org/domain/hierarchy"
	"github.com/standin-hq/standin/pkg/composables"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	meta := map[string]string{}
	if requestID := composables.UseRequestID(r.Context()); requestID != "" {
		meta["request_id"] = requestID
	}
	writeJSON(w, status, apiError{Code: code, Message: message, Meta: meta})
}

// writeDomainError maps the org module's sentinel errors onto the API error
// taxonomy; anything unrecognized is an internal error.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, hierarchy.ErrCycle):
		writeAPIError(w, r, http.StatusBadRequest, "CYCLE_DETECTED",
			"a circling relationship was detected between users, link was not created")
	case errors.Is(err, hierarchy.ErrInvalidDepthRange):
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_DEPTH_RANGE", err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		writeAPIError(w, r, http.StatusBadRequest, "EMAIL_TAKEN",
			"organization does not exist or user email is already taken")
	case errors.Is(err, user.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, organization.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "ORGANIZATION_NOT_FOUND", "organization not found")
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("request failed")
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "an unknown error has occurred")
	}
}

func decodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
