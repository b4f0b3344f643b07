// Package memory holds map-backed document repository and storage doubles
// used by the service unit tests.
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standin-hq/standin/modules/document/domain/document"
)

type linkKey struct {
	documentID uuid.UUID
	userID     uuid.UUID
	permission document.Permission
}

// DocumentStore keeps documents and permission links in maps. The delegation
// join of the postgres repository is stood in for by ownersOf, which returns
// the owners a given delegate stands in for.
type DocumentStore struct {
	mu    sync.RWMutex
	docs  map[uuid.UUID]document.Document
	links map[linkKey]document.UserLink

	ownersOf func(delegateID uuid.UUID) []uuid.UUID
}

func NewDocumentStore(ownersOf func(delegateID uuid.UUID) []uuid.UUID) *DocumentStore {
	if ownersOf == nil {
		ownersOf = func(uuid.UUID) []uuid.UUID { return nil }
	}
	return &DocumentStore{
		docs:     make(map[uuid.UUID]document.Document),
		links:    make(map[linkKey]document.UserLink),
		ownersOf: ownersOf,
	}
}

func (s *DocumentStore) Create(ctx context.Context, d document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := document.Hydrate(uuid.New(), d.Filename(), d.CreatedBy(), d.Status(), time.Now().UTC())
	s.docs[created.ID()] = created
	return created, nil
}

func (s *DocumentStore) GetByID(ctx context.Context, id uuid.UUID) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return document.Document{}, document.ErrNotFound
	}
	return d, nil
}

func (s *DocumentStore) IsOwner(ctx context.Context, userID, documentID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[documentID]
	return ok && d.CreatedBy() == userID, nil
}

func (s *DocumentStore) SetStatus(ctx context.Context, documentID uuid.UUID, status document.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return document.ErrNotFound
	}
	s.docs[documentID] = document.Hydrate(d.ID(), d.Filename(), d.CreatedBy(), status, d.CreatedAt())
	return nil
}

func (s *DocumentStore) InsertLinks(ctx context.Context, links []document.UserLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range links {
		key := linkKey{l.DocumentID, l.UserID, l.Permission}
		if _, ok := s.links[key]; ok {
			return document.ErrDuplicateLink
		}
		s.links[key] = l
	}
	return nil
}

func (s *DocumentStore) PendingSignatures(ctx context.Context, userID uuid.UUID) ([]document.Document, error) {
	principals := s.principalSet(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	out := make([]document.Document, 0, 4)
	for key, l := range s.links {
		if key.permission != document.PermissionSign || l.SignedBy != nil {
			continue
		}
		if _, ok := principals[key.userID]; !ok {
			continue
		}
		d, ok := s.docs[key.documentID]
		if !ok || d.Status() != document.StatusPending {
			continue
		}
		if _, dup := seen[d.ID()]; dup {
			continue
		}
		seen[d.ID()] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (s *DocumentStore) SignerPrincipals(ctx context.Context, documentID, userID uuid.UUID) ([]uuid.UUID, error) {
	principals := s.principalSet(userID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]uuid.UUID, 0, 2)
	for key, l := range s.links {
		if key.documentID != documentID || key.permission != document.PermissionSign || l.SignedBy != nil {
			continue
		}
		if _, ok := principals[key.userID]; ok {
			out = append(out, key.userID)
		}
	}
	return out, nil
}

func (s *DocumentStore) principalSet(userID uuid.UUID) map[uuid.UUID]struct{} {
	principals := map[uuid.UUID]struct{}{userID: {}}
	for _, ownerID := range s.ownersOf(userID) {
		principals[ownerID] = struct{}{}
	}
	return principals
}

func (s *DocumentStore) MarkSigned(ctx context.Context, documentID, holderID, signedBy uuid.UUID, signedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := linkKey{documentID, holderID, document.PermissionSign}
	l, ok := s.links[key]
	if !ok || l.SignedBy != nil {
		return document.ErrNotFound
	}
	l.SignedBy = &signedBy
	l.SignedAt = &signedAt
	s.links[key] = l
	return nil
}

func (s *DocumentStore) HasUnsignedLinks(ctx context.Context, documentID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key, l := range s.links {
		if key.documentID == documentID && key.permission == document.PermissionSign && l.SignedBy == nil {
			return true, nil
		}
	}
	return false, nil
}

// Link returns a stored permission link for assertions in tests.
func (s *DocumentStore) Link(documentID, userID uuid.UUID, permission document.Permission) (document.UserLink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[linkKey{documentID, userID, permission}]
	return l, ok
}

// ObjectStore is an in-process document.Storage.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string][]byte)}
}

func (s *ObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *ObjectStore) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[objectName]
	if !ok {
		return nil, document.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *ObjectStore) Remove(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}
