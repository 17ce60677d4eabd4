// Package app contains application services for the pricing context.
package app

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	exchangeApp "github.com/defisim/arbengine/business/exchange/app"
	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
	"github.com/defisim/arbengine/business/pricing/domain"
	"github.com/defisim/arbengine/internal/apperror"
	"github.com/defisim/arbengine/internal/logger"
)

const meterName = "github.com/defisim/arbengine/business/pricing/app"

type samplerMetrics struct {
	cycles        metric.Int64Counter
	samplesStored metric.Int64Counter
	adapterErrors metric.Int64Counter
	cycleLatency  metric.Float64Histogram
}

// Sampler fans one GetPrices call out per registered exchange and writes
// the results into the price cache. A failing adapter is isolated: it is
// logged, its exchange status flips to error and its old cache entries are
// left in place (stale, not cleared).
type Sampler struct {
	registry *exchangeApp.Registry
	cache    *PriceCache
	assets   []string
	logger   logger.LoggerInterface
	metrics  *samplerMetrics
	nowFn    func() time.Time
}

// NewSampler creates a Sampler over the given registry and cache.
func NewSampler(registry *exchangeApp.Registry, cache *PriceCache, assets []string, log logger.LoggerInterface) (*Sampler, error) {
	s := &Sampler{
		registry: registry,
		cache:    cache,
		assets:   assets,
		logger:   log,
		nowFn:    time.Now,
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sampler) initMetrics() error {
	meter := otel.Meter(meterName)
	s.metrics = &samplerMetrics{}

	var err error
	if s.metrics.cycles, err = meter.Int64Counter(
		"price_sampling_cycles_total",
		metric.WithDescription("Completed sampling cycles"),
	); err != nil {
		return err
	}
	if s.metrics.samplesStored, err = meter.Int64Counter(
		"price_samples_stored_total",
		metric.WithDescription("Price samples written to the cache"),
	); err != nil {
		return err
	}
	if s.metrics.adapterErrors, err = meter.Int64Counter(
		"price_adapter_errors_total",
		metric.WithDescription("Sampling calls that failed per exchange"),
	); err != nil {
		return err
	}
	if s.metrics.cycleLatency, err = meter.Float64Histogram(
		"price_sampling_cycle_duration_seconds",
		metric.WithDescription("Wall time of one sampling fan-out"),
	); err != nil {
		return err
	}
	return nil
}

// SetNowFunc overrides the clock, for tests.
func (s *Sampler) SetNowFunc(fn func() time.Time) {
	s.nowFn = fn
}

// SampleAll queries every registered exchange concurrently and waits for
// all of them to settle. It never returns an error: per-exchange failures
// degrade data freshness, they do not abort the tick.
func (s *Sampler) SampleAll(ctx context.Context) {
	start := s.nowFn()
	exchanges := s.registry.List()

	var wg sync.WaitGroup
	for _, exchange := range exchanges {
		wg.Add(1)
		go func(ex exchangeDomain.Exchange) {
			defer wg.Done()
			s.sampleExchange(ctx, ex)
		}(exchange)
	}
	wg.Wait()

	s.metrics.cycles.Add(ctx, 1)
	s.metrics.cycleLatency.Record(ctx, time.Since(start).Seconds())
}

func (s *Sampler) sampleExchange(ctx context.Context, exchange exchangeDomain.Exchange) {
	oracle, ok := s.registry.Oracle(exchange.Name)
	if !ok {
		return
	}

	prices, err := oracle.GetPrices(ctx, s.assets)
	if err != nil {
		appErr := apperror.Wrap(err, apperror.CodeAdapterUnavailable, exchange.Name)
		s.logger.Warn(ctx, "price sampling failed, keeping stale entries",
			"exchange", exchange.Name, "error", appErr.Error())
		s.registry.SetStatus(exchange.Name, exchangeDomain.StatusError)
		s.metrics.adapterErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("exchange", exchange.Name)))
		return
	}

	now := s.nowFn()
	stored := 0
	for asset, price := range prices {
		if price.Sign() <= 0 {
			s.logger.Warn(ctx, "discarding non-positive price",
				"exchange", exchange.Name, "asset", asset)
			continue
		}
		s.cache.Put(domain.PriceSample{
			Exchange:  exchange.Name,
			Kind:      exchange.Kind,
			Asset:     asset,
			Price:     price,
			SampledAt: now,
		})
		stored++
	}

	s.registry.SetStatus(exchange.Name, exchangeDomain.StatusConnected)
	s.metrics.samplesStored.Add(ctx, int64(stored), metric.WithAttributes(
		attribute.String("exchange", exchange.Name)))
}
