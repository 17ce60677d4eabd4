// Package sim provides a deterministic simulated price oracle.
// It is both the out-of-the-box demo adapter and the fake used in tests:
// a fixed seed always produces the same price sequence.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/exchange/domain"
)

// basePrices anchor the simulated walk per asset.
var basePrices = map[string]decimal.Decimal{
	"ETH":  decimal.NewFromInt(3200),
	"BTC":  decimal.NewFromInt(65000),
	"SOL":  decimal.NewFromInt(150),
	"USDC": decimal.NewFromInt(1),
}

var defaultBasePrice = decimal.NewFromInt(100)

// Config holds simulated oracle settings.
type Config struct {
	Name         string
	Kind         domain.VenueKind
	Seed         int64
	FeeRate      decimal.Decimal // taker fee charged on executed notional
	TradeLatency time.Duration   // simulated execution latency per leg
	DriftPct     float64         // max per-sample drift around the base price
	FailureRate  float64         // fraction of trades the venue rejects
}

// DefaultConfig returns a sim oracle config for the given venue.
func DefaultConfig(name string, kind domain.VenueKind, seed int64) Config {
	feeRate := decimal.NewFromFloat(0.001)
	latency := 300 * time.Millisecond
	if kind == domain.VenueDEX {
		feeRate = decimal.NewFromFloat(0.003)
		latency = 900 * time.Millisecond
	}

	return Config{
		Name:         name,
		Kind:         kind,
		Seed:         seed,
		FeeRate:      feeRate,
		TradeLatency: latency,
		DriftPct:     0.5,
	}
}

// Oracle is a seeded, deterministic price oracle.
type Oracle struct {
	cfg Config

	mu   sync.Mutex
	rng  *rand.Rand
	last map[string]decimal.Decimal
}

// New creates a simulated oracle from the config.
func New(cfg Config) *Oracle {
	return &Oracle{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		last: make(map[string]decimal.Decimal),
	}
}

// GetPrices returns the next price in the seeded walk for each asset.
func (o *Oracle) GetPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	prices := make(map[string]decimal.Decimal, len(assets))
	for _, asset := range assets {
		price := o.nextPrice(asset)
		o.last[asset] = price
		prices[asset] = price
	}
	return prices, nil
}

// nextPrice advances the walk for one asset. Caller holds the lock.
func (o *Oracle) nextPrice(asset string) decimal.Decimal {
	base, ok := basePrices[asset]
	if !ok {
		base = defaultBasePrice
	}

	// Drift in [-DriftPct, +DriftPct] percent around the base.
	drift := (o.rng.Float64()*2 - 1) * o.cfg.DriftPct
	factor := decimal.NewFromFloat(1 + drift/100)
	return base.Mul(factor).Round(8)
}

// ExecuteTrade fills the order at the last sampled price with a small
// seeded slippage, charging the venue fee on the executed notional.
func (o *Oracle) ExecuteTrade(ctx context.Context, asset string, amount decimal.Decimal, side domain.Side) (domain.TradeResult, error) {
	if amount.Sign() <= 0 {
		return domain.Failed("non-positive amount"), nil
	}

	// Execution has real latency; respect cancellation while we wait.
	if o.cfg.TradeLatency > 0 {
		select {
		case <-ctx.Done():
			return domain.TradeResult{}, ctx.Err()
		case <-time.After(o.cfg.TradeLatency):
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cfg.FailureRate > 0 && o.rng.Float64() < o.cfg.FailureRate {
		return domain.Failed("order rejected by venue"), nil
	}

	price, ok := o.last[asset]
	if !ok {
		price = o.nextPrice(asset)
		o.last[asset] = price
	}

	// Slippage up to 0.05% against the taker.
	slip := o.rng.Float64() * 0.0005
	if side == domain.SideBuy {
		price = price.Mul(decimal.NewFromFloat(1 + slip))
	} else {
		price = price.Mul(decimal.NewFromFloat(1 - slip))
	}
	price = price.Round(8)

	fee := price.Mul(amount).Mul(o.cfg.FeeRate).Round(8)

	return domain.TradeResult{
		Success:        true,
		ExecutedPrice:  price,
		ExecutedAmount: amount,
		Fee:            fee,
		TxID:           fmt.Sprintf("sim-%s-%s", o.cfg.Name, uuid.NewString()),
	}, nil
}
