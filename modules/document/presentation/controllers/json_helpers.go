package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/standin-hq/standin/modules/document/domain/document"
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

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, document.ErrNotFound):
		writeAPIError(w, r, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "file does not exist")
	case errors.Is(err, document.ErrDuplicateLink):
		writeAPIError(w, r, http.StatusBadRequest, "DUPLICATE_LINK",
			"user does not exist or already holds this permission on the document")
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
