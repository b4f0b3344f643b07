package services

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/standin-hq/standin/modules/document/domain/document"
	"github.com/standin-hq/standin/modules/document/infrastructure/memory"
)

type docFixture struct {
	ctx       context.Context
	store     *memory.DocumentStore
	objects   *memory.ObjectStore
	svc       *DocumentService
	delegates map[uuid.UUID][]uuid.UUID // delegate -> owners it stands in for
}

func newDocFixture(t *testing.T) *docFixture {
	t.Helper()

	f := &docFixture{
		ctx:       context.Background(),
		objects:   memory.NewObjectStore(),
		delegates: make(map[uuid.UUID][]uuid.UUID),
	}
	f.store = memory.NewDocumentStore(func(delegateID uuid.UUID) []uuid.UUID {
		return f.delegates[delegateID]
	})
	f.svc = NewDocumentService(f.store, f.objects)
	return f
}

func (f *docFixture) mustCreate(t *testing.T, ownerID uuid.UUID, filename, content string) document.Document {
	t.Helper()

	doc, err := f.svc.Create(f.ctx, ownerID, filename, bytes.NewBufferString(content), int64(len(content)), "application/pdf")
	require.NoError(t, err)
	return doc
}

func TestDocumentCreate_StoresContentAndOwnerLink(t *testing.T) {
	f := newDocFixture(t)
	owner := uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.Equal(t, document.StatusDraft, doc.Status())

	got, body, err := f.svc.Download(f.ctx, doc.ID())
	require.NoError(t, err)
	defer body.Close()
	require.Equal(t, doc.ID(), got.ID())

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Equal(t, "body", string(data))

	_, ok := f.store.Link(doc.ID(), owner, document.PermissionRead)
	require.True(t, ok)
}

func TestShare_OnlyCreatorMayShare(t *testing.T) {
	f := newDocFixture(t)
	owner, stranger, reader := uuid.New(), uuid.New(), uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")

	err := f.svc.Share(f.ctx, stranger, doc.ID(), []uuid.UUID{reader})
	require.ErrorIs(t, err, document.ErrNotFound)

	require.NoError(t, f.svc.Share(f.ctx, owner, doc.ID(), []uuid.UUID{reader}))
	_, ok := f.store.Link(doc.ID(), reader, document.PermissionRead)
	require.True(t, ok)
}

func TestRequestSignature_MovesDocumentToPending(t *testing.T) {
	f := newDocFixture(t)
	owner, signer := uuid.New(), uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), signer))

	got, err := f.store.GetByID(f.ctx, doc.ID())
	require.NoError(t, err)
	require.Equal(t, document.StatusPending, got.Status())

	pending, err := f.svc.PendingSignatures(f.ctx, signer)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, doc.ID(), pending[0].ID())
}

func TestSign_DirectSignerCompletesDocument(t *testing.T) {
	f := newDocFixture(t)
	owner, signer := uuid.New(), uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), signer))

	require.NoError(t, f.svc.Sign(f.ctx, signer, doc.ID()))

	got, err := f.store.GetByID(f.ctx, doc.ID())
	require.NoError(t, err)
	require.Equal(t, document.StatusSigned, got.Status())

	link, ok := f.store.Link(doc.ID(), signer, document.PermissionSign)
	require.True(t, ok)
	require.NotNil(t, link.SignedBy)
	require.Equal(t, signer, *link.SignedBy)
}

func TestSign_DelegateSignsForAbsentHolder(t *testing.T) {
	f := newDocFixture(t)
	owner, holder, delegate := uuid.New(), uuid.New(), uuid.New()
	f.delegates[delegate] = []uuid.UUID{holder}

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), holder))

	pending, err := f.svc.PendingSignatures(f.ctx, delegate)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.svc.Sign(f.ctx, delegate, doc.ID()))

	// The holder's link carries the delegate's signature.
	link, ok := f.store.Link(doc.ID(), holder, document.PermissionSign)
	require.True(t, ok)
	require.NotNil(t, link.SignedBy)
	require.Equal(t, delegate, *link.SignedBy)

	got, err := f.store.GetByID(f.ctx, doc.ID())
	require.NoError(t, err)
	require.Equal(t, document.StatusSigned, got.Status())
}

func TestSign_StaysPendingWhileLinksRemain(t *testing.T) {
	f := newDocFixture(t)
	owner, first, second := uuid.New(), uuid.New(), uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), first))
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), second))

	require.NoError(t, f.svc.Sign(f.ctx, first, doc.ID()))

	got, err := f.store.GetByID(f.ctx, doc.ID())
	require.NoError(t, err)
	require.Equal(t, document.StatusPending, got.Status())

	require.NoError(t, f.svc.Sign(f.ctx, second, doc.ID()))

	got, err = f.store.GetByID(f.ctx, doc.ID())
	require.NoError(t, err)
	require.Equal(t, document.StatusSigned, got.Status())
}

func TestSign_RejectsUninvolvedUser(t *testing.T) {
	f := newDocFixture(t)
	owner, signer, stranger := uuid.New(), uuid.New(), uuid.New()

	doc := f.mustCreate(t, owner, "contract.pdf", "body")
	require.NoError(t, f.svc.RequestSignature(f.ctx, owner, doc.ID(), signer))

	err := f.svc.Sign(f.ctx, stranger, doc.ID())
	require.ErrorIs(t, err, document.ErrNotFound)
}
