// Package app contains application services for the pricing context.
package app

import (
	"sort"
	"sync"
	"time"

	"github.com/defisim/arbengine/business/pricing/domain"
)

type cacheKey struct {
	exchange string
	asset    string
}

// PriceCache holds the latest sampled price per (exchange, asset) pair.
// The sampling loop writes, the detector and executor read; entries are
// overwritten each cycle and never removed, so a failed cycle leaves the
// previous value in place to be filtered out by the staleness bound.
type PriceCache struct {
	staleness time.Duration
	nowFn     func() time.Time

	mu      sync.RWMutex
	samples map[cacheKey]domain.PriceSample
}

// NewPriceCache creates a PriceCache with the given staleness bound.
func NewPriceCache(staleness time.Duration) *PriceCache {
	return &PriceCache{
		staleness: staleness,
		nowFn:     time.Now,
		samples:   make(map[cacheKey]domain.PriceSample),
	}
}

// SetNowFunc overrides the clock, for tests.
func (c *PriceCache) SetNowFunc(fn func() time.Time) {
	c.nowFn = fn
}

// Put stores a sample, replacing any previous value for the pair.
func (c *PriceCache) Put(sample domain.PriceSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.samples[cacheKey{sample.Exchange, sample.Asset}] = sample
}

// Get returns the latest sample for the pair regardless of freshness.
func (c *PriceCache) Get(exchange, asset string) (domain.PriceSample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sample, ok := c.samples[cacheKey{exchange, asset}]
	return sample, ok
}

// FreshPrice returns the sample for the pair only if it is within the
// staleness bound.
func (c *PriceCache) FreshPrice(exchange, asset string) (domain.PriceSample, bool) {
	sample, ok := c.Get(exchange, asset)
	if !ok || !sample.IsFresh(c.staleness, c.nowFn()) {
		return domain.PriceSample{}, false
	}
	return sample, true
}

// SnapshotAsset returns all fresh samples for an asset, sorted by exchange
// name for deterministic iteration.
func (c *PriceCache) SnapshotAsset(asset string) []domain.PriceSample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.nowFn()
	var result []domain.PriceSample
	for key, sample := range c.samples {
		if key.asset != asset {
			continue
		}
		if !sample.IsFresh(c.staleness, now) {
			continue
		}
		result = append(result, sample)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Exchange < result[j].Exchange
	})
	return result
}

// Len returns the number of cached samples, fresh or not.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}
