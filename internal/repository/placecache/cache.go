// Package placecache caches place-details payloads in a key-value store.
package placecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/geopulse-ai/geopulse/internal/db"
	"github.com/geopulse-ai/geopulse/internal/domain"
)

// DetailsProvider is the consumer interface for the place cache.
type DetailsProvider interface {
	PlaceDetails(ctx context.Context, id string) (*domain.Place, error)
}

// store is the storage subset the cache needs.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedDetails is a read-through decorator over a DetailsProvider.
// Storage failures degrade to a direct provider call.
type CachedDetails struct {
	inner      DetailsProvider
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner DetailsProvider,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedDetails {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDetails{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// PlaceDetails returns a cached place or calls the inner provider.
func (c *CachedDetails) PlaceDetails(ctx context.Context, id string) (*domain.Place, error) {
	key := c.cacheKey(id)

	if p, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return p, nil
	}

	c.incCache("miss")

	place, err := c.inner.PlaceDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("place details: %w", err)
	}

	c.putToCache(ctx, key, place)
	return place, nil
}

func (c *CachedDetails) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedDetails) cacheKey(id string) string {
	return c.prefix + "place:" + id
}

func (c *CachedDetails) getFromCache(ctx context.Context, key string) (*domain.Place, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached place", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var cached domain.Place
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Warn("Failed to parse cached place", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &cached, true
}

func (c *CachedDetails) putToCache(ctx context.Context, key string, place *domain.Place) {
	data, err := json.Marshal(place)
	if err != nil {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache place", zap.String("key", key), zap.Error(err))
	}
}
