// Package memory keeps collections in process memory. It backs tests and the
// STORE_DRIVER=memory mode.
package memory

import (
	"context"
	"sync"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/docstore/domain/repository"
	"panchayat-docstore/internal/shared/errors"
	"panchayat-docstore/pkg/value"

	"github.com/google/uuid"
)

// Store is an in-memory repository.Store.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*value.Object
	order []string
	newID func() string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:  make(map[string]*value.Object),
		newID: func() string { return uuid.NewString() },
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Find(ctx context.Context, q model.Query) ([]*value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]*value.Object, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.docs[id])
	}
	s.mu.RUnlock()

	matched := Apply(all, q)
	out := make([]*value.Object, len(matched))
	for i, d := range matched {
		out[i] = d.Clone()
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, errors.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

func (s *Store) Insert(ctx context.Context, doc *value.Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := s.newID()
	stored := doc.Clone()
	stored.Set(model.FieldID, value.String(id))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(id, stored)
	return id, nil
}

func (s *Store) Replace(ctx context.Context, id string, doc *value.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := doc.Clone()
	stored.Set(model.FieldID, value.String(id))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(id, stored)
	return nil
}

func (s *Store) Update(ctx context.Context, id string, fields *value.Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return errors.ErrDocumentNotFound
	}
	updated := doc.Clone()
	updated.Merge(fields)
	updated.Set(model.FieldID, value.String(id))
	s.docs[id] = updated
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return nil
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// put must be called with mu held.
func (s *Store) put(id string, doc *value.Object) {
	if _, exists := s.docs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.docs[id] = doc
}

// Factory opens a fresh in-memory Store per collection.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Open(string) repository.Store { return NewStore() }
