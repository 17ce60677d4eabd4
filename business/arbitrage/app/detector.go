// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	pricingApp "github.com/defisim/arbengine/business/pricing/app"
	"github.com/defisim/arbengine/internal/logger"
)

const meterName = "github.com/defisim/arbengine/business/arbitrage/app"

// DetectorConfig holds opportunity detection settings.
type DetectorConfig struct {
	Assets       []string
	MinProfitPct decimal.Decimal
	FeeModel     domain.FeeModel
}

type detectorMetrics struct {
	cycles         metric.Int64Counter
	routesDetected metric.Int64Counter
	pairsEvaluated metric.Int64Counter
}

// Detector consumes the price cache and produces ranked arbitrage routes.
type Detector struct {
	cache   *pricingApp.PriceCache
	config  DetectorConfig
	logger  logger.LoggerInterface
	metrics *detectorMetrics
	nowFn   func() time.Time
}

// NewDetector creates a Detector over the given price cache.
func NewDetector(cache *pricingApp.PriceCache, config DetectorConfig, log logger.LoggerInterface) (*Detector, error) {
	d := &Detector{
		cache:  cache,
		config: config,
		logger: log,
		nowFn:  time.Now,
	}
	if err := d.initMetrics(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Detector) initMetrics() error {
	meter := otel.Meter(meterName)
	d.metrics = &detectorMetrics{}

	var err error
	if d.metrics.cycles, err = meter.Int64Counter(
		"detection_cycles_total",
		metric.WithDescription("Completed detection cycles"),
	); err != nil {
		return err
	}
	if d.metrics.routesDetected, err = meter.Int64Counter(
		"routes_detected_total",
		metric.WithDescription("Routes surviving the profit threshold"),
	); err != nil {
		return err
	}
	if d.metrics.pairsEvaluated, err = meter.Int64Counter(
		"exchange_pairs_evaluated_total",
		metric.WithDescription("Ordered exchange pairs evaluated"),
	); err != nil {
		return err
	}
	return nil
}

// SetNowFunc overrides the clock, for tests.
func (d *Detector) SetNowFunc(fn func() time.Time) {
	d.nowFn = fn
}

// Detect runs one detection pass over the cache's fresh samples and returns
// all surviving routes sorted by net profit percentage descending.
func (d *Detector) Detect(ctx context.Context) []domain.Route {
	now := d.nowFn()
	seen := make(map[string]bool)
	var routes []domain.Route

	for _, asset := range d.config.Assets {
		samples := d.cache.SnapshotAsset(asset)
		if len(samples) < 2 {
			continue
		}

		for _, buySample := range samples {
			for _, sellSample := range samples {
				if buySample.Exchange == sellSample.Exchange {
					continue
				}
				d.metrics.pairsEvaluated.Add(ctx, 1)

				if buySample.Price.IsZero() {
					// Division guard: a zero buy price must be rejected,
					// never propagated as infinite profit.
					continue
				}

				buy := d.config.FeeModel.NewLeg(buySample.Exchange, buySample.Kind, buySample.Price)
				sell := d.config.FeeModel.NewLeg(sellSample.Exchange, sellSample.Kind, sellSample.Price)

				pct, ok := domain.NetProfitPct(buy, sell)
				if !ok || pct.LessThan(d.config.MinProfitPct) {
					continue
				}

				key := domain.RouteKey(asset, buy.Exchange, sell.Exchange)
				if seen[key] {
					continue
				}
				seen[key] = true

				routes = append(routes, domain.Route{
					ID:           uuid.NewString(),
					Asset:        asset,
					Buy:          buy,
					Sell:         sell,
					GrossSpread:  sell.Price.Sub(buy.Price),
					NetProfit:    domain.NetProfit(buy, sell),
					NetProfitPct: pct,
					EstLatency:   domain.EstimateLatency(buy.Kind, sell.Kind),
					RiskScore:    domain.ScoreRisk(buy.Kind, sell.Kind, pct, buy.Exchange, sell.Exchange),
					Confidence:   domain.ScoreConfidence(buy.Kind, sell.Kind, pct, buy.Exchange, sell.Exchange),
					DetectedAt:   now,
				})
			}
		}
	}

	sort.Slice(routes, func(i, j int) bool {
		return routes[i].NetProfitPct.GreaterThan(routes[j].NetProfitPct)
	})

	d.metrics.cycles.Add(ctx, 1)
	d.metrics.routesDetected.Add(ctx, int64(len(routes)))

	if len(routes) > 0 {
		best := routes[0]
		d.logger.Debug(ctx, "detection cycle complete",
			"routes", len(routes),
			"best_asset", best.Asset,
			"best_profit_pct", best.NetProfitPct.StringFixed(4))
	}

	return routes
}
