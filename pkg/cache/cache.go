// Package cache provides an optional Redis-backed result cache keyed by
// document content hash. Concurrent requests for the same document
// collapse onto a single in-flight pipeline run instead of recomputing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dtnitsch/sof-extractor/models"
)

const keyPrefix = "sof:result:"

// ResultCache stores serialized ProcessingResults by content hash.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// New creates a ResultCache. A zero ttl means entries never expire.
func New(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key returns the cache key for a document's bytes.
func Key(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// GetOrProcess returns the cached result for the document, or runs process
// exactly once per unique content hash to fill the cache. The second
// return value reports whether the result came from cache (or from
// another in-flight run of the same document).
func (c *ResultCache) GetOrProcess(ctx context.Context, data []byte, process func(context.Context) (*models.ProcessingResult, error)) (*models.ProcessingResult, bool, error) {
	hash := Key(data)

	// A read failure degrades the cache, not the run; fall through and
	// process as if it were a miss.
	if res, ok, err := c.get(ctx, hash); err == nil && ok {
		return res, true, nil
	}

	v, err, shared := c.group.Do(hash, func() (interface{}, error) {
		// Another process may have filled the entry while we queued.
		if res, ok, err := c.get(ctx, hash); err == nil && ok {
			return res, nil
		}

		res, err := process(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.set(ctx, hash, res); err != nil {
			// A write failure degrades the cache, not the result.
			return res, nil
		}
		return res, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*models.ProcessingResult), shared, nil
}

func (c *ResultCache) get(ctx context.Context, hash string) (*models.ProcessingResult, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", hash, err)
	}

	var res models.ProcessingResult
	if err := json.Unmarshal(payload, &res); err != nil {
		// Treat a corrupt entry as a miss; it will be overwritten.
		return nil, false, nil
	}
	for i := range res.Events {
		if err := res.Events[i].HydrateTimes(); err != nil {
			return nil, false, nil
		}
	}
	return &res, true, nil
}

func (c *ResultCache) set(ctx context.Context, hash string, res *models.ProcessingResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", hash, err)
	}
	if err := c.client.Set(ctx, keyPrefix+hash, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", hash, err)
	}
	return nil
}

// Invalidate removes a document's cached result, e.g. after a human
// correction pass makes the stored events stale.
func (c *ResultCache) Invalidate(ctx context.Context, data []byte) error {
	if err := c.client.Del(ctx, keyPrefix+Key(data)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
