package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
	"github.com/defisim/arbengine/business/pricing/domain"
)

var testTime = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func newSample(exchange, asset, price string, at time.Time) domain.PriceSample {
	return domain.PriceSample{
		Exchange:  exchange,
		Kind:      exchangeDomain.VenueCEX,
		Asset:     asset,
		Price:     decimal.RequireFromString(price),
		SampledAt: at,
	}
}

func TestPutOverwrites(t *testing.T) {
	cache := NewPriceCache(10 * time.Second)
	cache.SetNowFunc(func() time.Time { return testTime })

	cache.Put(newSample("binance", "ETH", "3200", testTime.Add(-time.Second)))
	cache.Put(newSample("binance", "ETH", "3210", testTime))

	sample, ok := cache.Get("binance", "ETH")
	if !ok {
		t.Fatal("Get returned no sample")
	}
	if !sample.Price.Equal(decimal.RequireFromString("3210")) {
		t.Errorf("Price = %s, want 3210", sample.Price)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestFreshPriceRespectsStaleness(t *testing.T) {
	cache := NewPriceCache(10 * time.Second)
	cache.SetNowFunc(func() time.Time { return testTime })

	cache.Put(newSample("binance", "ETH", "3200", testTime.Add(-5*time.Second)))
	cache.Put(newSample("kraken", "ETH", "3220", testTime.Add(-time.Minute)))

	if _, ok := cache.FreshPrice("binance", "ETH"); !ok {
		t.Error("fresh sample reported stale")
	}
	if _, ok := cache.FreshPrice("kraken", "ETH"); ok {
		t.Error("stale sample reported fresh")
	}
	// The stale entry is kept, only filtered at read time.
	if _, ok := cache.Get("kraken", "ETH"); !ok {
		t.Error("stale sample evicted from cache")
	}
}

func TestFreshPriceZeroBoundDisablesCheck(t *testing.T) {
	cache := NewPriceCache(0)
	cache.SetNowFunc(func() time.Time { return testTime })

	cache.Put(newSample("binance", "ETH", "3200", testTime.Add(-time.Hour)))

	if _, ok := cache.FreshPrice("binance", "ETH"); !ok {
		t.Error("zero staleness bound should accept any sample age")
	}
}

func TestSnapshotAsset(t *testing.T) {
	cache := NewPriceCache(10 * time.Second)
	cache.SetNowFunc(func() time.Time { return testTime })

	cache.Put(newSample("kraken", "ETH", "3220", testTime))
	cache.Put(newSample("binance", "ETH", "3200", testTime))
	cache.Put(newSample("okx", "ETH", "3210", testTime.Add(-time.Minute))) // stale
	cache.Put(newSample("binance", "BTC", "65000", testTime))              // other asset

	samples := cache.SnapshotAsset("ETH")
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	// Sorted by exchange name for deterministic pairing.
	if samples[0].Exchange != "binance" || samples[1].Exchange != "kraken" {
		t.Errorf("order = [%s, %s], want [binance, kraken]",
			samples[0].Exchange, samples[1].Exchange)
	}
}
