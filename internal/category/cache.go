package category

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const cacheKeyPrefix = "storefront:category:descendants:"

// cachedResolver stores resolved id lists in Redis. Cache failures are
// logged and fall through to the wrapped resolver.
type cachedResolver struct {
	next   Resolver
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedResolver wraps next with a Redis cache entry per root id.
func NewCachedResolver(next Resolver, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) Resolver {
	return &cachedResolver{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "category-cache").Logger(),
	}
}

func cacheKey(rootID int64) string {
	return cacheKeyPrefix + strconv.FormatInt(rootID, 10)
}

func (c *cachedResolver) ResolveDescendants(ctx context.Context, rootID int64) ([]int64, error) {
	key := cacheKey(rootID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []int64
		if jsonErr := json.Unmarshal(raw, &ids); jsonErr == nil && len(ids) > 0 {
			return ids, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding malformed cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("category cache read failed")
	}

	ids, err := c.next.ResolveDescendants(ctx, rootID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return ids, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("category cache write failed")
	}
	return ids, nil
}
