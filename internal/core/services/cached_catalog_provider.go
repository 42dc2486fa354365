package services

import (
	"context"
	"fmt"
	"time"

	"moviehub/internal/core/ports"
	"moviehub/pkg/cache"
	"moviehub/pkg/tracing"
)

// CacheObserver is told whether each lookup was served from cache.
type CacheObserver interface {
	RecordCatalogCacheLookup(hit bool)
}

// CachedCatalogProvider serves repeated discover requests for the same
// genre from memory. Failed provider calls are not cached.
type CachedCatalogProvider struct {
	provider ports.CatalogProvider
	cache    *cache.Cache[[]byte]
	observer CacheObserver
}

// NewCachedCatalogProvider wraps provider with a ttl cache. observer may be nil.
func NewCachedCatalogProvider(provider ports.CatalogProvider, ttl time.Duration, observer CacheObserver) *CachedCatalogProvider {
	return &CachedCatalogProvider{
		provider: provider,
		cache:    cache.New[[]byte](ttl),
		observer: observer,
	}
}

func (p *CachedCatalogProvider) DiscoverByGenre(ctx context.Context, genreID int) ([]byte, error) {
	key := fmt.Sprintf("genre:%d", genreID)

	body, hit, err := p.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		return p.provider.DiscoverByGenre(ctx, genreID)
	})
	if err != nil {
		return nil, err
	}

	tracing.AddSpanAttributes(ctx, tracing.CacheHitKey.Bool(hit))
	if p.observer != nil {
		p.observer.RecordCatalogCacheLookup(hit)
	}
	return body, nil
}

// Stop releases the cache sweeper.
func (p *CachedCatalogProvider) Stop() {
	p.cache.Stop()
}
