package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nextops/aws-services/internal/logging"
)

const catalogCacheKey = "aws:catalog:services" // JSON array of raw names, in catalog order

// CachedProvider keeps the last catalog listing in Redis for ttl. Redis problems
// are logged and bypassed; they never fail a listing.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedProvider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedProvider) ListEntityNames(ctx context.Context) ([]string, error) {
	if names, ok := c.lookup(ctx); ok {
		return names, nil
	}

	names, err := c.inner.ListEntityNames(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, catalogCacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Warnf("catalog.cache", "store failed error=%q", err.Error())
	}

	return names, nil
}

// Invalidate drops the cached listing so the next call reaches the catalog.
func (c *CachedProvider) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

func (c *CachedProvider) lookup(ctx context.Context) ([]string, bool) {
	data, err := c.client.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnf("catalog.cache", "lookup failed error=%q", err.Error())
		}
		return nil, false
	}

	names := []string{}
	if err := json.Unmarshal(data, &names); err != nil {
		c.logger.Warnf("catalog.cache", "discarding corrupt entry error=%q", err.Error())
		return nil, false
	}

	c.logger.Debugf("catalog.cache", "hit services=%d", len(names))
	return names, true
}
