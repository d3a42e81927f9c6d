package geocode

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/placeshare-backend/internal/domain/place"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

const cacheKeyPrefix = "geocode:v1:"

// Cached memoizes successful lookups in redis. Redis failures are logged and
// the lookup falls through to the wrapped geocoder.
type Cached struct {
	next    Geocoder
	rdb     redis.UniversalClient
	ttl     time.Duration
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewCached(next Geocoder, rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger, metrics *observability.Metrics) *Cached {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, log: log.With("client", "GeocodeCache"), metrics: metrics}
}

func (c *Cached) GetCoordsForAddress(ctx context.Context, address string) (place.Location, error) {
	key := cacheKey(address)
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var loc place.Location
			if jsonErr := json.Unmarshal(raw, &loc); jsonErr == nil {
				c.metrics.IncGeocode("cache", "hit")
				return loc, nil
			}
			c.log.Warn("Discarding corrupt geocode cache entry", "key", key)
		case errors.Is(err, redis.Nil):
			c.metrics.IncGeocode("cache", "miss")
		default:
			c.log.Warn("Geocode cache read failed", "error", err)
		}
	}

	loc, err := c.next.GetCoordsForAddress(ctx, address)
	if err != nil {
		return place.Location{}, err
	}
	if c.rdb != nil {
		if raw, mErr := json.Marshal(loc); mErr == nil {
			if sErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); sErr != nil {
				c.log.Warn("Geocode cache write failed", "error", sErr)
			}
		}
	}
	return loc, nil
}

func cacheKey(address string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	sum := sha256.Sum256([]byte(norm))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
