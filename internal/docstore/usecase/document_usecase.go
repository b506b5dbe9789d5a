package usecase

import (
	"context"
	"time"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/docstore/domain/repository"
	"panchayat-docstore/internal/shared/contextkeys"
	"panchayat-docstore/internal/shared/docpath"
	"panchayat-docstore/internal/shared/errors"
	"panchayat-docstore/internal/shared/logger"
	"panchayat-docstore/pkg/value"
)

// DocumentUsecase serves the store operations of the REST adapter.
type DocumentUsecase interface {
	List(ctx context.Context, req ListRequest) ([]*value.Object, error)
	Get(ctx context.Context, path string) (*value.Object, error)
	Set(ctx context.Context, path string, data *value.Object) (*value.Object, error)
	Update(ctx context.Context, path string, data *value.Object) (*value.Object, error)
	Create(ctx context.Context, collectionPath string, data *value.Object) (*value.Object, error)
	Delete(ctx context.Context, path string) error
}

type documentUsecase struct {
	registry *Registry
	cache    repository.QueryCache
	rules    *AccessRules
	logger   logger.Logger
	now      func() time.Time
	timeout  time.Duration
}

// Option configures NewDocumentUsecase.
type Option func(*documentUsecase)

// WithClock replaces time.Now for timestamping.
func WithClock(now func() time.Time) Option {
	return func(uc *documentUsecase) { uc.now = now }
}

// WithQueryTimeout bounds every store call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(uc *documentUsecase) { uc.timeout = d }
}

// WithCache sets the list-result cache.
func WithCache(cache repository.QueryCache) Option {
	return func(uc *documentUsecase) {
		if cache != nil {
			uc.cache = cache
		}
	}
}

// WithAccessRules guards every operation with rules.
func WithAccessRules(rules *AccessRules) Option {
	return func(uc *documentUsecase) { uc.rules = rules }
}

// NewDocumentUsecase creates the document use case. Without WithAccessRules
// every operation is allowed; without WithCache nothing is cached.
func NewDocumentUsecase(registry *Registry, log logger.Logger, opts ...Option) DocumentUsecase {
	uc := &documentUsecase{
		registry: registry,
		cache:    noopCache{},
		logger:   log.WithComponent("document-usecase"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *documentUsecase) List(ctx context.Context, req ListRequest) ([]*value.Object, error) {
	ctx = withOperation(ctx, OperationList, req.Collection)
	if err := uc.authorize(ctx, OperationList, req.Path, req.Collection); err != nil {
		return nil, err
	}

	q := Translate(req)
	docs, cacheKey, ok := uc.cache.Get(ctx, q)
	if ok {
		uc.logger.WithContext(ctx).Debugf("cache hit (%d documents)", len(docs))
		return docs, nil
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	docs, err := uc.registry.Store(q.Collection).Find(ctx, q)
	if err != nil {
		return nil, uc.storeError(ctx, err, "failed to list documents", req.Path)
	}
	if docs == nil {
		docs = []*value.Object{}
	}
	uc.cache.Set(ctx, cacheKey, docs)
	return docs, nil
}

func (uc *documentUsecase) Get(ctx context.Context, path string) (*value.Object, error) {
	collection, id, err := docpath.SplitDocument(path)
	if err != nil {
		return nil, err
	}
	ctx = withOperation(ctx, OperationGet, collection)
	if err := uc.authorize(ctx, OperationGet, path, collection); err != nil {
		return nil, err
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	doc, err := uc.registry.Store(collection).FindByID(ctx, id)
	if err != nil {
		return nil, uc.storeError(ctx, err, "failed to get document", path)
	}
	return withID(doc, id, false), nil
}

func (uc *documentUsecase) Set(ctx context.Context, path string, data *value.Object) (*value.Object, error) {
	collection, id, err := docpath.SplitDocument(path)
	if err != nil {
		return nil, err
	}
	ctx = withOperation(ctx, OperationSet, collection)
	if err := uc.authorize(ctx, OperationSet, path, collection); err != nil {
		return nil, err
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	store := uc.registry.Store(collection)
	doc := payload(data)
	now := value.String(model.Timestamp(uc.now()))

	existing, err := store.FindByID(ctx, id)
	switch {
	case err == nil:
		if created, ok := existing.Get(model.FieldCreatedAt); ok {
			doc.Set(model.FieldCreatedAt, created)
		}
	case !errors.IsNotFound(err):
		return nil, uc.storeError(ctx, err, "failed to read document", path)
	}
	if !doc.Has(model.FieldCreatedAt) {
		doc.Set(model.FieldCreatedAt, now)
	}
	doc.Set(model.FieldUpdatedAt, now)

	if err := store.Replace(ctx, id, doc); err != nil {
		return nil, uc.storeError(ctx, err, "failed to set document", path)
	}
	uc.cache.Invalidate(ctx, collection)
	uc.logger.WithContext(ctx).Debugf("set %s", path)
	return withID(doc, id, false), nil
}

func (uc *documentUsecase) Update(ctx context.Context, path string, data *value.Object) (*value.Object, error) {
	collection, id, err := docpath.SplitDocument(path)
	if err != nil {
		return nil, err
	}
	ctx = withOperation(ctx, OperationUpdate, collection)
	if err := uc.authorize(ctx, OperationUpdate, path, collection); err != nil {
		return nil, err
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	store := uc.registry.Store(collection)
	fields := payload(data)
	fields.Set(model.FieldUpdatedAt, value.String(model.Timestamp(uc.now())))

	if err := store.Update(ctx, id, fields); err != nil {
		return nil, uc.storeError(ctx, err, "failed to update document", path)
	}
	uc.cache.Invalidate(ctx, collection)

	doc, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, uc.storeError(ctx, err, "failed to read updated document", path)
	}
	return withID(doc, id, false), nil
}

func (uc *documentUsecase) Create(ctx context.Context, collectionPath string, data *value.Object) (*value.Object, error) {
	collection, err := docpath.CollectionName(collectionPath)
	if err != nil {
		return nil, err
	}
	ctx = withOperation(ctx, OperationCreate, collection)
	if err := uc.authorize(ctx, OperationCreate, collectionPath, collection); err != nil {
		return nil, err
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	doc := payload(data)
	now := value.String(model.Timestamp(uc.now()))
	if !doc.Has(model.FieldCreatedAt) {
		doc.Set(model.FieldCreatedAt, now)
	}
	doc.Set(model.FieldUpdatedAt, now)

	id, err := uc.registry.Store(collection).Insert(ctx, doc)
	if err != nil {
		return nil, uc.storeError(ctx, err, "failed to create document", collectionPath)
	}
	uc.cache.Invalidate(ctx, collection)
	uc.logger.WithContext(ctx).Infof("created %s/%s", docpath.Clean(collectionPath), id)
	return withID(doc, id, true), nil
}

func (uc *documentUsecase) Delete(ctx context.Context, path string) error {
	collection, id, err := docpath.SplitDocument(path)
	if err != nil {
		return err
	}
	ctx = withOperation(ctx, OperationDelete, collection)
	if err := uc.authorize(ctx, OperationDelete, path, collection); err != nil {
		return err
	}

	ctx, cancel := uc.bound(ctx)
	defer cancel()

	if err := uc.registry.Store(collection).Delete(ctx, id); err != nil {
		return uc.storeError(ctx, err, "failed to delete document", path)
	}
	uc.cache.Invalidate(ctx, collection)
	return nil
}

func (uc *documentUsecase) authorize(ctx context.Context, op Operation, path, collection string) error {
	if uc.rules == nil {
		return nil
	}
	if err := uc.rules.Allow(ctx, op, path, collection); err != nil {
		uc.logger.WithContext(ctx).Warnf("access denied: %v", err)
		return err
	}
	return nil
}

func (uc *documentUsecase) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, uc.timeout)
}

func (uc *documentUsecase) storeError(ctx context.Context, err error, message, path string) error {
	if errors.IsNotFound(err) {
		return errors.NewNotFoundError("document").WithDetail("path", path).WithCause(errors.ErrDocumentNotFound)
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	uc.logger.WithContext(ctx).Errorf("%s %s: %v", message, path, err)
	return errors.NewInfrastructureError(message).WithDetail("path", path).WithCause(err)
}

func withOperation(ctx context.Context, op Operation, collection string) context.Context {
	ctx = context.WithValue(ctx, contextkeys.OperationKey, string(op))
	return context.WithValue(ctx, contextkeys.CollectionKey, collection)
}

// payload copies the client data without any backend id it may carry.
func payload(data *value.Object) *value.Object {
	if data == nil {
		return value.NewObject()
	}
	doc := data.Clone()
	doc.Delete(model.FieldID)
	return doc
}

// withID returns doc with _id first and, when public is set, a matching id.
func withID(doc *value.Object, id string, public bool) *value.Object {
	out := value.NewObject()
	out.Set(model.FieldID, value.String(id))
	for _, f := range doc.Fields() {
		if f.Key == model.FieldID {
			continue
		}
		out.Set(f.Key, f.Value)
	}
	if public {
		out.Set(model.FieldPublicID, value.String(id))
	}
	return out
}

type noopCache struct{}

func (noopCache) Get(context.Context, model.Query) ([]*value.Object, string, bool) {
	return nil, "", false
}
func (noopCache) Set(context.Context, string, []*value.Object) {}
func (noopCache) Invalidate(context.Context, string)           {}
