package provider

import (
	"context"
	"fmt"
	"time"

	"orion-screener/internal/cache"
	"orion-screener/internal/config"
	"orion-screener/internal/models"
)

// CachedProvider wraps a DataProvider with the two-tier cache. Quotes
// live in the fast tier only; historical series and option chains also
// write the durable tier so repeated runs within their TTL skip the
// provider entirely.
type CachedProvider struct {
	inner DataProvider
	cache *cache.Manager
	ttls  config.CacheConfig
}

// NewCachedProvider creates a cache-backed provider decorator.
func NewCachedProvider(inner DataProvider, cacheManager *cache.Manager, ttls config.CacheConfig) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cacheManager,
		ttls:  ttls,
	}
}

func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

func (p *CachedProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	key := fmt.Sprintf("quote:%s", symbol)
	return cache.GetOrFetch(ctx, p.cache, key, p.ttls.QuoteTTLDuration(), false,
		func(ctx context.Context) (*models.Quote, error) {
			return p.inner.GetQuote(ctx, symbol)
		})
}

func (p *CachedProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	key := fmt.Sprintf("chain:%s:%s", symbol, expiry.Format("2006-01-02"))
	return cache.GetOrFetch(ctx, p.cache, key, p.ttls.OptionChainTTLDuration(), true,
		func(ctx context.Context) (*models.OptionChain, error) {
			return p.inner.GetOptionChain(ctx, symbol, expiry)
		})
}

func (p *CachedProvider) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	key := fmt.Sprintf("hist:%s:%s:%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	return cache.GetOrFetch(ctx, p.cache, key, p.ttls.HistoricalTTLDuration(), true,
		func(ctx context.Context) ([]models.Candle, error) {
			return p.inner.GetHistoricalPrices(ctx, symbol, start, end)
		})
}

func (p *CachedProvider) GetAvailableExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	key := fmt.Sprintf("expirations:%s", symbol)
	return cache.GetOrFetch(ctx, p.cache, key, p.ttls.OptionChainTTLDuration(), false,
		func(ctx context.Context) ([]time.Time, error) {
			return p.inner.GetAvailableExpirations(ctx, symbol)
		})
}
