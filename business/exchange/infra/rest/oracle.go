// Package rest provides a price oracle backed by a REST ticker endpoint.
// Trade legs are filled at the last fetched quote: this engine is a
// simulation and never places real orders on the remote venue.
package rest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/defisim/arbengine/business/exchange/domain"
	"github.com/defisim/arbengine/internal/apperror"
	"github.com/defisim/arbengine/internal/circuitbreaker"
	"github.com/defisim/arbengine/internal/httpclient"
	"github.com/defisim/arbengine/internal/logger"
	"github.com/defisim/arbengine/internal/ratelimit"
)

const meterName = "github.com/defisim/arbengine/business/exchange/infra/rest"

// Config holds REST oracle settings.
type Config struct {
	Name           string
	Kind           domain.VenueKind
	Endpoint       string          // base URL of the ticker API
	TickerPath     string          // path returning [{"symbol":...,"price":...}]
	FeeRate        decimal.Decimal // taker fee applied to simulated fills
	TradeLatency   time.Duration   // simulated execution latency per leg
	RequestsPerMin int
}

// DefaultConfig returns REST oracle defaults for the given venue.
func DefaultConfig(name string, kind domain.VenueKind, endpoint string) Config {
	feeRate := decimal.NewFromFloat(0.001)
	latency := 400 * time.Millisecond
	if kind == domain.VenueDEX {
		feeRate = decimal.NewFromFloat(0.003)
		latency = 1200 * time.Millisecond
	}

	return Config{
		Name:           name,
		Kind:           kind,
		Endpoint:       endpoint,
		TickerPath:     "/ticker/price",
		FeeRate:        feeRate,
		TradeLatency:   latency,
		RequestsPerMin: 60,
	}
}

// tickerEntry is one row of the upstream ticker response.
type tickerEntry struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type oracleMetrics struct {
	fetches      metric.Int64Counter
	fetchErrors  metric.Int64Counter
	fetchLatency metric.Float64Histogram
}

// Oracle polls a REST ticker endpoint for prices. Calls are rate limited
// and go through a circuit breaker so a dead venue fails fast instead of
// stalling the sampling fan-out.
type Oracle struct {
	cfg     Config
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]tickerEntry]
	logger  logger.LoggerInterface
	metrics *oracleMetrics

	mu   sync.Mutex
	last map[string]decimal.Decimal
}

// New creates a REST oracle.
func New(cfg Config, log logger.LoggerInterface) (*Oracle, error) {
	client, err := httpclient.New(
		httpclient.WithBaseURL(cfg.Endpoint),
		httpclient.WithProviderName(cfg.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	o := &Oracle{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerMin),
		breaker: circuitbreaker.New[[]tickerEntry](circuitbreaker.DefaultConfig(cfg.Name)),
		logger:  log,
		last:    make(map[string]decimal.Decimal),
	}

	if err := o.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return o, nil
}

func (o *Oracle) initMetrics() error {
	meter := otel.Meter(meterName)
	o.metrics = &oracleMetrics{}

	var err error
	if o.metrics.fetches, err = meter.Int64Counter(
		"ticker_fetches_total",
		metric.WithDescription("Total ticker fetch attempts"),
	); err != nil {
		return err
	}
	if o.metrics.fetchErrors, err = meter.Int64Counter(
		"ticker_fetch_errors_total",
		metric.WithDescription("Ticker fetches that failed"),
	); err != nil {
		return err
	}
	if o.metrics.fetchLatency, err = meter.Float64Histogram(
		"ticker_fetch_duration_seconds",
		metric.WithDescription("Ticker fetch latency"),
	); err != nil {
		return err
	}
	return nil
}

// GetPrices fetches the ticker and returns prices for the requested assets.
func (o *Oracle) GetPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	venueAttr := metric.WithAttributes(attribute.String("venue", o.cfg.Name))
	o.metrics.fetches.Add(ctx, 1, venueAttr)

	start := time.Now()
	entries, err := o.breaker.Execute(func() ([]tickerEntry, error) {
		var result []tickerEntry
		params := map[string]string{"symbols": strings.Join(assets, ",")}
		if err := o.client.GetJSON(ctx, o.cfg.TickerPath, params, &result); err != nil {
			return nil, apperror.External(apperror.CodeTickerFetchFailed, o.cfg.Name, err)
		}
		return result, nil
	})
	o.metrics.fetchLatency.Record(ctx, time.Since(start).Seconds(), venueAttr)

	if err != nil {
		o.metrics.fetchErrors.Add(ctx, 1, venueAttr)
		return nil, err
	}

	wanted := make(map[string]bool, len(assets))
	for _, a := range assets {
		wanted[a] = true
	}

	prices := make(map[string]decimal.Decimal, len(assets))
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, entry := range entries {
		if !wanted[entry.Symbol] {
			continue
		}
		price, perr := decimal.NewFromString(entry.Price)
		if perr != nil || price.Sign() <= 0 {
			o.logger.Warn(ctx, "skipping unparseable ticker entry",
				"venue", o.cfg.Name, "symbol", entry.Symbol, "price", entry.Price)
			continue
		}
		prices[entry.Symbol] = price
		o.last[entry.Symbol] = price
	}
	return prices, nil
}

// ExecuteTrade simulates a fill at the last fetched quote.
func (o *Oracle) ExecuteTrade(ctx context.Context, asset string, amount decimal.Decimal, side domain.Side) (domain.TradeResult, error) {
	if amount.Sign() <= 0 {
		return domain.Failed("non-positive amount"), nil
	}

	if o.cfg.TradeLatency > 0 {
		select {
		case <-ctx.Done():
			return domain.TradeResult{}, ctx.Err()
		case <-time.After(o.cfg.TradeLatency):
		}
	}

	o.mu.Lock()
	price, ok := o.last[asset]
	o.mu.Unlock()

	if !ok {
		return domain.Failed("no quote available for " + asset), nil
	}

	fee := price.Mul(amount).Mul(o.cfg.FeeRate).Round(8)

	return domain.TradeResult{
		Success:        true,
		ExecutedPrice:  price,
		ExecutedAmount: amount,
		Fee:            fee,
		TxID:           fmt.Sprintf("rest-%s-%s", o.cfg.Name, uuid.NewString()),
	}, nil
}
