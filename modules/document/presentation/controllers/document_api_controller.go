package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/standin-hq/standin/modules/document/domain/document"
	"github.com/standin-hq/standin/modules/document/services"
	"github.com/standin-hq/standin/pkg/application"
	"github.com/standin-hq/standin/pkg/composables"
)

// Uploads above this size are rejected before touching object storage.
const maxUploadBytes = 32 << 20

var validate = validator.New()

type DocumentAPIController struct {
	docs *services.DocumentService
}

func NewDocumentAPIController(app application.Application) application.Controller {
	return &DocumentAPIController{
		docs: app.Service(services.DocumentService{}).(*services.DocumentService),
	}
}

func (c *DocumentAPIController) Key() string {
	return "/documents"
}

func (c *DocumentAPIController) Register(r *mux.Router) {
	r.HandleFunc("/documents/create", c.Create).Methods(http.MethodPost)
	r.HandleFunc("/documents/pending", c.Pending).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}", c.Download).Methods(http.MethodGet)
	r.HandleFunc("/documents/{id}/share", c.Share).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/request_signature", c.RequestSignature).Methods(http.MethodPost)
	r.HandleFunc("/documents/{id}/sign", c.Sign).Methods(http.MethodPost)
}

type documentResponse struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	CreatedBy uuid.UUID `json:"created_by"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toDocumentResponse(d document.Document) documentResponse {
	return documentResponse{
		ID:        d.ID(),
		Filename:  d.Filename(),
		CreatedBy: d.CreatedBy(),
		Status:    string(d.Status()),
		CreatedAt: d.CreatedAt(),
	}
}

func (c *DocumentAPIController) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "expected a multipart upload")
		return
	}

	ownerID, err := uuid.Parse(r.FormValue("owner_id"))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "owner_id must be a uuid")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var created document.Document
	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		var err error
		created, err = c.docs.Create(ctx, ownerID, header.Filename, file, header.Size, contentType)
		return err
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Document documentResponse `json:"document"`
	}{toDocumentResponse(created)})
}

func (c *DocumentAPIController) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "document id must be a uuid")
		return
	}

	doc, body, err := c.docs.Download(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("document download aborted")
	}
}

type shareRequest struct {
	OwnerID     uuid.UUID   `json:"owner_id" validate:"required"`
	SharedUsers []uuid.UUID `json:"shared_users" validate:"required,min=1"`
}

func (c *DocumentAPIController) Share(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "document id must be a uuid")
		return
	}
	var req shareRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.docs.Share(ctx, req.OwnerID, id, req.SharedUsers)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document was properly shared"})
}

type requestSignatureRequest struct {
	OwnerID     uuid.UUID `json:"owner_id" validate:"required"`
	SigningUser uuid.UUID `json:"signing_user" validate:"required"`
}

func (c *DocumentAPIController) RequestSignature(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "document id must be a uuid")
		return
	}
	var req requestSignatureRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.docs.RequestSignature(ctx, req.OwnerID, id, req.SigningUser)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("user %s was asked to sign document %s", req.SigningUser, id),
	})
}

func (c *DocumentAPIController) Pending(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_QUERY", "user_id must be a uuid")
		return
	}

	docs, err := c.docs.PendingSignatures(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	writeJSON(w, http.StatusOK, struct {
		Documents []documentResponse `json:"documents"`
	}{out})
}

type signRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

func (c *DocumentAPIController) Sign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_ID", "document id must be a uuid")
		return
	}
	var req signRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	err = composables.InTx(r.Context(), func(ctx context.Context) error {
		return c.docs.Sign(ctx, req.UserID, id)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("document %s was signed by user %s", id, req.UserID),
	})
}
