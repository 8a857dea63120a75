package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/despensa-ai/order-engine/internal/cache"
	"github.com/despensa-ai/order-engine/internal/observability"
)

// indexCacheKey is where the serialized index lives in the external cache.
var indexCacheKey = cache.CacheKey("catalog", "index")

// Provider hands out the current catalog index, rebuilding it when the cached
// copy ages past the validity window. A published index is read-only; a
// rebuild replaces it with one atomic pointer swap so in-flight resolutions
// never observe a partially built index.
type Provider struct {
	builder *Builder
	cache   cache.Client
	ttl     time.Duration
	logger  *observability.Logger

	current atomic.Pointer[Index]
	mu      sync.Mutex // serializes rebuilds
}

// NewProvider creates an index provider backed by the given builder and cache.
func NewProvider(builder *Builder, cacheClient cache.Client, ttl time.Duration, logger *observability.Logger) *Provider {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Provider{
		builder: builder,
		cache:   cacheClient,
		ttl:     ttl,
		logger:  logger,
	}
}

// Index returns the current catalog index, from the in-process copy, the
// external cache, or a fresh crawl, in that order. The returned index is
// never nil; an empty one signals the remote service had nothing to offer.
func (p *Provider) Index(ctx context.Context) (*Index, error) {
	if idx := p.current.Load(); idx != nil && p.fresh(idx) {
		return idx, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another caller may have rebuilt while we waited on the lock.
	if idx := p.current.Load(); idx != nil && p.fresh(idx) {
		return idx, nil
	}

	if idx := p.fromCache(ctx); idx != nil {
		p.current.Store(idx)
		return idx, nil
	}

	// A failed crawl is never published; the next call retries the remote
	// service instead of serving an empty index for the whole window.
	idx, err := p.builder.Build(ctx)
	if err != nil {
		return idx, err
	}

	p.current.Store(idx)
	p.toCache(ctx, idx)
	return idx, nil
}

// Invalidate drops the in-process and cached copies; the next Index call
// triggers a fresh crawl.
func (p *Provider) Invalidate(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current.Store(nil)
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, indexCacheKey); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to drop cached catalog index")
	}
}

func (p *Provider) fresh(idx *Index) bool {
	return time.Since(idx.BuiltAt) < p.ttl
}

// fromCache loads a still-fresh index from the external cache, or nil.
func (p *Provider) fromCache(ctx context.Context) *Index {
	if p.cache == nil {
		return nil
	}

	data, err := p.cache.Get(ctx, indexCacheKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			p.logger.Warn().Err(err).Msg("Catalog index cache read failed")
		}
		return nil
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		p.logger.Warn().Err(err).Msg("Discarding undecodable cached catalog index")
		return nil
	}
	if !p.fresh(&idx) {
		return nil
	}

	p.logger.Debug().Int("products", idx.Len()).Msg("Catalog index served from cache")
	return &idx
}

// toCache stores the freshly built index under the validity window TTL.
func (p *Provider) toCache(ctx context.Context, idx *Index) {
	if p.cache == nil || idx.Empty() {
		return
	}

	data, err := json.Marshal(idx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to serialize catalog index for caching")
		return
	}
	if err := p.cache.Set(ctx, indexCacheKey, data, p.ttl); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to cache catalog index")
	}
}
