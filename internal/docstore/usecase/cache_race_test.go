package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"panchayat-docstore/internal/docstore/adapter/persistence/memory"
	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/docstore/domain/repository"
	"panchayat-docstore/internal/shared/logger"
	"panchayat-docstore/pkg/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generationCache keys entries by collection and generation the way the
// Redis cache does. It ignores the rest of the query.
type generationCache struct {
	mu      sync.Mutex
	gens    map[string]int
	entries map[string][]*value.Object
}

func newGenerationCache() *generationCache {
	return &generationCache{gens: map[string]int{}, entries: map[string][]*value.Object{}}
}

func (c *generationCache) Get(_ context.Context, q model.Query) ([]*value.Object, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := fmt.Sprintf("%s:%d", q.Collection, c.gens[q.Collection])
	docs, ok := c.entries[key]
	return docs, key, ok
}

func (c *generationCache) Set(_ context.Context, key string, docs []*value.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = docs
}

func (c *generationCache) Invalidate(_ context.Context, collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[collection]++
}

// findHookFactory runs afterFind once, right after the next Find has read
// its result, standing in for a writer that lands mid-list.
type findHookFactory struct {
	afterFind func()
}

func (f *findHookFactory) Open(string) repository.Store {
	return &findHookStore{Store: memory.NewStore(), factory: f}
}

type findHookStore struct {
	repository.Store
	factory *findHookFactory
}

func (s *findHookStore) Find(ctx context.Context, q model.Query) ([]*value.Object, error) {
	docs, err := s.Store.Find(ctx, q)
	if hook := s.factory.afterFind; hook != nil {
		s.factory.afterFind = nil
		hook()
	}
	return docs, err
}

func TestDocumentUsecase_WriteDuringListDoesNotPinStaleResult(t *testing.T) {
	factory := &findHookFactory{}
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	uc := NewDocumentUsecase(NewRegistry(factory), logger.Discard(),
		WithClock(clock.now), WithCache(newGenerationCache()))
	ctx := context.Background()

	created, err := uc.Create(ctx, "notices", obj(t, map[string]any{"title": "draft"}))
	require.NoError(t, err)
	path := "notices/" + str(t, created, "_id")

	req, err := ParseListRequest("notices", "", "", "")
	require.NoError(t, err)

	factory.afterFind = func() {
		_, err := uc.Update(ctx, path, obj(t, map[string]any{"title": "final"}))
		require.NoError(t, err)
	}
	docs, err := uc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "draft", str(t, docs[0], "title"))

	docs, err = uc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "final", str(t, docs[0], "title"))
}
