package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/cache"
	"go.uber.org/zap"
)

const (
	catalogGenerationKey = "catalog:generation"
	// unknown ids are remembered for notFoundTTL
	notFoundMarker = "null"
	notFoundTTL    = 30 * time.Second
)

// CachedCatalog decorates a catalog.Provider with a read-through cache.
// Listings are keyed by a generation number so a single write invalidates
// every cached listing.
type CachedCatalog struct {
	next   catalog.Provider
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCatalog creates a CachedCatalog.
func NewCachedCatalog(next catalog.Provider, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, cache: c, ttl: ttl, logger: logger}
}

var _ catalog.Provider = (*CachedCatalog)(nil)

// ListServices returns the services matching q, served from the cache while
// the entry is fresh.
func (c *CachedCatalog) ListServices(ctx context.Context, q catalog.Query) ([]catalog.Service, error) {
	key := c.listKey(ctx, "services", q)
	var out []catalog.Service
	if c.load(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.ListServices(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, c.ttl)
	return out, nil
}

// GetService returns one service. Misses are cached briefly so unknown IDs
// do not reach the catalog API on every request.
func (c *CachedCatalog) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	key := serviceKey(id)
	var out *catalog.Service
	if c.load(ctx, key, &out) {
		if out == nil {
			return nil, catalog.ErrNotFound
		}
		return out, nil
	}
	out, err := c.next.GetService(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		c.storeRaw(ctx, key, []byte(notFoundMarker), notFoundTTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, c.ttl)
	return out, nil
}

// ListProfessionals returns the professionals matching q, served from the
// cache while the entry is fresh.
func (c *CachedCatalog) ListProfessionals(ctx context.Context, q catalog.Query) ([]catalog.Professional, error) {
	key := c.listKey(ctx, "professionals", q)
	var out []catalog.Professional
	if c.load(ctx, key, &out) {
		return out, nil
	}
	out, err := c.next.ListProfessionals(ctx, q)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, c.ttl)
	return out, nil
}

// GetProfessional returns one professional, caching misses like GetService.
func (c *CachedCatalog) GetProfessional(ctx context.Context, id string) (*catalog.Professional, error) {
	key := professionalKey(id)
	var out *catalog.Professional
	if c.load(ctx, key, &out) {
		if out == nil {
			return nil, catalog.ErrNotFound
		}
		return out, nil
	}
	out, err := c.next.GetProfessional(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		c.storeRaw(ctx, key, []byte(notFoundMarker), notFoundTTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out, c.ttl)
	return out, nil
}

// InvalidateService drops the cached service and every cached listing.
func (c *CachedCatalog) InvalidateService(ctx context.Context, id string) error {
	return c.invalidate(ctx, serviceKey(id))
}

// InvalidateProfessional drops the cached professional and every cached listing.
func (c *CachedCatalog) InvalidateProfessional(ctx context.Context, id string) error {
	return c.invalidate(ctx, professionalKey(id))
}

func (c *CachedCatalog) invalidate(ctx context.Context, key string) error {
	if err := c.cache.Delete(ctx, key); err != nil {
		return err
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 10)
	return c.cache.Set(ctx, catalogGenerationKey, []byte(gen), 0)
}

func (c *CachedCatalog) listKey(ctx context.Context, kind string, q catalog.Query) string {
	gen := "0"
	if raw, ok, err := c.cache.Get(ctx, catalogGenerationKey); err == nil && ok {
		gen = string(raw)
	}
	return "catalog:" + kind + ":" + gen + ":" + strings.ToLower(strings.TrimSpace(q.Category)) + ":" + strings.ToLower(strings.TrimSpace(q.Text))
}

func serviceKey(id string) string      { return "catalog:service:" + id }
func professionalKey(id string) string { return "catalog:professional:" + id }

// load reports a cache hit. Cache failures are logged and treated as misses.
func (c *CachedCatalog) load(ctx context.Context, key string, out any) bool {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedCatalog) store(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.storeRaw(ctx, key, raw, ttl)
}

func (c *CachedCatalog) storeRaw(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	if err := c.cache.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
