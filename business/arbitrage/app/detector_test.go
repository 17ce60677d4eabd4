package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
	pricingApp "github.com/defisim/arbengine/business/pricing/app"
	pricingDomain "github.com/defisim/arbengine/business/pricing/domain"
	"github.com/defisim/arbengine/internal/logger"
)

var testTime = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelInfo, "test", nil)
}

func seedCache(t *testing.T, staleness time.Duration, samples []pricingDomain.PriceSample) *pricingApp.PriceCache {
	t.Helper()
	cache := pricingApp.NewPriceCache(staleness)
	cache.SetNowFunc(func() time.Time { return testTime })
	for _, s := range samples {
		cache.Put(s)
	}
	return cache
}

func sample(exchange string, kind exchangeDomain.VenueKind, asset, price string, at time.Time) pricingDomain.PriceSample {
	return pricingDomain.PriceSample{
		Exchange:  exchange,
		Kind:      kind,
		Asset:     asset,
		Price:     decimal.RequireFromString(price),
		SampledAt: at,
	}
}

func newTestDetector(t *testing.T, cache *pricingApp.PriceCache, minProfitPct string) *Detector {
	t.Helper()
	detector, err := NewDetector(cache, DetectorConfig{
		Assets:       []string{"ETH"},
		MinProfitPct: decimal.RequireFromString(minProfitPct),
		FeeModel:     domain.DefaultFeeModel(),
	}, testLogger())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	detector.SetNowFunc(func() time.Time { return testTime })
	return detector
}

func TestDetectFindsProfitableRoutes(t *testing.T) {
	cache := seedCache(t, 10*time.Second, []pricingDomain.PriceSample{
		sample("binance", exchangeDomain.VenueCEX, "ETH", "3200", testTime),
		sample("kraken", exchangeDomain.VenueCEX, "ETH", "3220", testTime),
		sample("uniswap", exchangeDomain.VenueDEX, "ETH", "3150", testTime),
	})
	detector := newTestDetector(t, cache, "0.25")

	routes := detector.Detect(context.Background())
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}

	// Sorted by net profit percentage descending.
	for i := 1; i < len(routes); i++ {
		if routes[i].NetProfitPct.GreaterThan(routes[i-1].NetProfitPct) {
			t.Errorf("routes not sorted: %s before %s",
				routes[i-1].NetProfitPct, routes[i].NetProfitPct)
		}
	}

	best := routes[0]
	if best.Buy.Exchange != "uniswap" || best.Sell.Exchange != "kraken" {
		t.Errorf("best route = %s -> %s, want uniswap -> kraken",
			best.Buy.Exchange, best.Sell.Exchange)
	}
	if best.RiskScore < 0 || best.RiskScore > 100 {
		t.Errorf("RiskScore = %d outside [0,100]", best.RiskScore)
	}
	if best.Confidence < 0 || best.Confidence > 1 {
		t.Errorf("Confidence = %f outside [0,1]", best.Confidence)
	}
	if best.ID == "" {
		t.Error("route has empty ID")
	}
	if !best.DetectedAt.Equal(testTime) {
		t.Errorf("DetectedAt = %s, want %s", best.DetectedAt, testTime)
	}

	// Each (asset, buy, sell) triple appears at most once.
	seen := make(map[string]bool)
	for _, r := range routes {
		if seen[r.Key()] {
			t.Errorf("duplicate route %s", r.Key())
		}
		seen[r.Key()] = true
	}
}

func TestDetectRespectsThreshold(t *testing.T) {
	cache := seedCache(t, 10*time.Second, []pricingDomain.PriceSample{
		sample("binance", exchangeDomain.VenueCEX, "ETH", "3200", testTime),
		sample("kraken", exchangeDomain.VenueCEX, "ETH", "3220", testTime),
		sample("uniswap", exchangeDomain.VenueDEX, "ETH", "3150", testTime),
	})
	// At a 1% floor only the uniswap buy legs survive.
	detector := newTestDetector(t, cache, "1")

	routes := detector.Detect(context.Background())
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	for _, r := range routes {
		if r.Buy.Exchange != "uniswap" {
			t.Errorf("unexpected route %s -> %s", r.Buy.Exchange, r.Sell.Exchange)
		}
		if r.NetProfitPct.LessThan(decimal.NewFromInt(1)) {
			t.Errorf("route below threshold: %s", r.NetProfitPct)
		}
	}
}

func TestDetectNeedsTwoFreshSamples(t *testing.T) {
	stale := testTime.Add(-time.Minute)
	cache := seedCache(t, 10*time.Second, []pricingDomain.PriceSample{
		sample("binance", exchangeDomain.VenueCEX, "ETH", "3200", testTime),
		sample("uniswap", exchangeDomain.VenueDEX, "ETH", "3150", stale),
	})
	detector := newTestDetector(t, cache, "0.25")

	if routes := detector.Detect(context.Background()); len(routes) != 0 {
		t.Errorf("got %d routes from a single fresh sample, want 0", len(routes))
	}
}

func TestDetectSkipsZeroBuyPrice(t *testing.T) {
	cache := seedCache(t, 10*time.Second, []pricingDomain.PriceSample{
		sample("binance", exchangeDomain.VenueCEX, "ETH", "0", testTime),
		sample("kraken", exchangeDomain.VenueCEX, "ETH", "3220", testTime),
	})
	detector := newTestDetector(t, cache, "0.25")

	for _, r := range detector.Detect(context.Background()) {
		if r.Buy.Price.IsZero() {
			t.Errorf("route with zero buy price: %s -> %s", r.Buy.Exchange, r.Sell.Exchange)
		}
	}
}
