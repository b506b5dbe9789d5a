package repository

import (
	"context"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/pkg/value"
)

// Store is a schemaless handle on one backend collection. Documents carry
// their id under model.FieldID.
type Store interface {
	// Find returns the documents matching q, sorted and limited.
	Find(ctx context.Context, q model.Query) ([]*value.Object, error)
	// FindByID returns errors.ErrDocumentNotFound when id is absent.
	FindByID(ctx context.Context, id string) (*value.Object, error)
	// Insert stores doc under a generated id and returns it.
	Insert(ctx context.Context, doc *value.Object) (string, error)
	// Replace overwrites the document with id, creating it when absent.
	Replace(ctx context.Context, id string, doc *value.Object) error
	// Update sets the given top-level fields; errors.ErrDocumentNotFound when id is absent.
	Update(ctx context.Context, id string, fields *value.Object) error
	// Delete removes id. Removing a missing document is not an error.
	Delete(ctx context.Context, id string) error
}

// StoreFactory opens a Store for a collection name. It never rejects a name.
type StoreFactory interface {
	Open(collection string) Store
}

// QueryCache caches list results per collection. Get returns the entry key it
// looked up, hit or miss; Set stores under that key, so a result read before an
// Invalidate is never served after it. An empty key means do not store.
type QueryCache interface {
	Get(ctx context.Context, q model.Query) (docs []*value.Object, key string, ok bool)
	Set(ctx context.Context, key string, docs []*value.Object)
	// Invalidate drops every cached result of collection.
	Invalidate(ctx context.Context, collection string)
}
