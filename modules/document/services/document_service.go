package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/document/domain/document"
)

// DocumentService keeps the e-signature bookkeeping thin: a status flag on
// the document plus permission links per user. Contents live in object
// storage keyed by the document id.
type DocumentService struct {
	docs    document.Repository
	storage document.Storage
	now     func() time.Time
}

func NewDocumentService(docs document.Repository, storage document.Storage) *DocumentService {
	return &DocumentService{docs: docs, storage: storage, now: time.Now}
}

func (s *DocumentService) Create(ctx context.Context, ownerID uuid.UUID, filename string, content io.Reader, size int64, contentType string) (document.Document, error) {
	created, err := s.docs.Create(ctx, document.New(filename, ownerID))
	if err != nil {
		return document.Document{}, err
	}
	links := []document.UserLink{{
		DocumentID: created.ID(),
		UserID:     ownerID,
		Permission: document.PermissionRead,
	}}
	if err := s.docs.InsertLinks(ctx, links); err != nil {
		return document.Document{}, err
	}
	if err := s.storage.Put(ctx, created.ID().String(), content, size, contentType); err != nil {
		return document.Document{}, err
	}
	return created, nil
}

func (s *DocumentService) Download(ctx context.Context, documentID uuid.UUID) (document.Document, io.ReadCloser, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return document.Document{}, nil, err
	}
	body, err := s.storage.Get(ctx, documentID.String())
	if err != nil {
		return document.Document{}, nil, err
	}
	return doc, body, nil
}

// Share grants read access; only the creator may share.
func (s *DocumentService) Share(ctx context.Context, ownerID, documentID uuid.UUID, userIDs []uuid.UUID) error {
	isOwner, err := s.docs.IsOwner(ctx, ownerID, documentID)
	if err != nil {
		return err
	}
	if !isOwner {
		return document.ErrNotFound
	}
	links := make([]document.UserLink, 0, len(userIDs))
	for _, id := range userIDs {
		links = append(links, document.UserLink{
			DocumentID: documentID,
			UserID:     id,
			Permission: document.PermissionRead,
		})
	}
	return s.docs.InsertLinks(ctx, links)
}

// RequestSignature asks a user to sign and moves the document to pending.
func (s *DocumentService) RequestSignature(ctx context.Context, ownerID, documentID, signerID uuid.UUID) error {
	isOwner, err := s.docs.IsOwner(ctx, ownerID, documentID)
	if err != nil {
		return err
	}
	if !isOwner {
		return document.ErrNotFound
	}
	if err := s.docs.InsertLinks(ctx, []document.UserLink{{
		DocumentID: documentID,
		UserID:     signerID,
		Permission: document.PermissionSign,
	}}); err != nil {
		return err
	}
	return s.docs.SetStatus(ctx, documentID, document.StatusPending)
}

// PendingSignatures lists documents the user can sign, directly or because a
// signer delegates to them.
func (s *DocumentService) PendingSignatures(ctx context.Context, userID uuid.UUID) ([]document.Document, error) {
	return s.docs.PendingSignatures(ctx, userID)
}

// Sign marks every sign link the user may act on — their own and those of
// signers who delegate to them. Once no unsigned sign link remains, the
// document itself flips to signed.
func (s *DocumentService) Sign(ctx context.Context, userID, documentID uuid.UUID) error {
	pending, err := s.docs.PendingSignatures(ctx, userID)
	if err != nil {
		return err
	}
	allowed := false
	for _, d := range pending {
		if d.ID() == documentID {
			allowed = true
			break
		}
	}
	if !allowed {
		return document.ErrNotFound
	}

	principals, err := s.docs.SignerPrincipals(ctx, documentID, userID)
	if err != nil {
		return err
	}
	signedAt := s.now().UTC()
	for _, holderID := range principals {
		if err := s.docs.MarkSigned(ctx, documentID, holderID, userID, signedAt); err != nil {
			return err
		}
	}

	remaining, err := s.docs.HasUnsignedLinks(ctx, documentID)
	if err != nil {
		return err
	}
	if !remaining {
		return s.docs.SetStatus(ctx, documentID, document.StatusSigned)
	}
	return nil
}
