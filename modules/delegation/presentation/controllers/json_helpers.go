package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/standin-hq/standin/modules/delegation/domain/delegation"
	"github.com/standin-hq/standin/modules/org/domain/aggregates/user"
	"github.com/standin-hq/standin/pkg/composables"
	"github.com/standin-hq/standin/pkg/serrors"
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

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var coded *serrors.Error
	if errors.As(err, &coded) {
		writeAPIError(w, r, http.StatusBadRequest, coded.Code, coded.Message)
		return
	}

	switch {
	case errors.Is(err, delegation.ErrSelfDelegation):
		writeAPIError(w, r, http.StatusBadRequest, "SELF_DELEGATION",
			"trying to create a delegation between the same user")
	case errors.Is(err, delegation.ErrDuplicatePair):
		writeAPIError(w, r, http.StatusBadRequest, "DUPLICATE_DELEGATION",
			"delegation already exists for this owner and delegate")
	case errors.Is(err, delegation.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "DELEGATION_NOT_FOUND", "delegation not found")
	case errors.Is(err, user.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
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
