// Package cache stores list results in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"panchayat-docstore/internal/docstore/domain/model"
	"panchayat-docstore/internal/docstore/domain/repository"
	"panchayat-docstore/internal/shared/logger"
	"panchayat-docstore/pkg/value"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docstore"

// RedisQueryCache keys every entry by a per-collection generation counter.
// Invalidate bumps the counter, orphaning older entries until their TTL expires.
type RedisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisQueryCache creates a cache whose entries live for ttl.
func NewRedisQueryCache(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisQueryCache {
	return &RedisQueryCache{
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("query-cache"),
	}
}

var _ repository.QueryCache = (*RedisQueryCache)(nil)

func generationKey(collection string) string {
	return fmt.Sprintf("%s:gen:%s", keyPrefix, collection)
}

func (c *RedisQueryCache) entryKey(ctx context.Context, q model.Query) (string, error) {
	gen, err := c.client.Get(ctx, generationKey(q.Collection)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:q:%s:%d:%s", keyPrefix, q.Collection, gen, hex.EncodeToString(sum[:12])), nil
}

// Get returns the cached result of q and the key it was looked up under. The
// key pins the generation current at lookup time. Any Redis failure is a miss.
func (c *RedisQueryCache) Get(ctx context.Context, q model.Query) ([]*value.Object, string, bool) {
	key, err := c.entryKey(ctx, q)
	if err != nil {
		c.logger.WithContext(ctx).Warnf("cache key for %s: %v", q.Collection, err)
		return nil, "", false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, key, false
	}
	if err != nil {
		c.logger.WithContext(ctx).Warnf("cache get %s: %v", key, err)
		return nil, key, false
	}

	var docs []*value.Object
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.WithContext(ctx).Warnf("cache entry %s is corrupt: %v", key, err)
		return nil, key, false
	}
	if docs == nil {
		docs = []*value.Object{}
	}
	return docs, key, true
}

// Set stores docs under a key returned by Get. If the collection was
// invalidated since, the entry lands in the old generation and is never read.
func (c *RedisQueryCache) Set(ctx context.Context, key string, docs []*value.Object) {
	if key == "" {
		return
	}
	if docs == nil {
		docs = []*value.Object{}
	}
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.WithContext(ctx).Warnf("encode cache entry %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithContext(ctx).Warnf("cache set %s: %v", key, err)
	}
}

func (c *RedisQueryCache) Invalidate(ctx context.Context, collection string) {
	if err := c.client.Incr(ctx, generationKey(collection)).Err(); err != nil {
		c.logger.WithContext(ctx).Warnf("invalidate %s: %v", collection, err)
	}
}
