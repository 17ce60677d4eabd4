// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// Estimated per-leg execution latency by venue kind. DEX legs wait for
// block inclusion, CEX legs only for order matching.
const (
	dexLegLatency = 12 * time.Second
	cexLegLatency = 1500 * time.Millisecond
)

var hundred = decimal.NewFromInt(100)

// FeeModel holds the per-venue-kind fee rates applied to route legs.
type FeeModel struct {
	DEXRate decimal.Decimal
	CEXRate decimal.Decimal
}

// DefaultFeeModel returns the standard 0.3% DEX / 0.1% CEX rates.
func DefaultFeeModel() FeeModel {
	return FeeModel{
		DEXRate: decimal.NewFromFloat(0.003),
		CEXRate: decimal.NewFromFloat(0.001),
	}
}

// RateFor returns the fee rate for a venue kind.
func (m FeeModel) RateFor(kind exchangeDomain.VenueKind) decimal.Decimal {
	if kind == exchangeDomain.VenueDEX {
		return m.DEXRate
	}
	return m.CEXRate
}

// NewLeg builds a leg with its fee figures filled in.
func (m FeeModel) NewLeg(exchange string, kind exchangeDomain.VenueKind, price decimal.Decimal) Leg {
	rate := m.RateFor(kind)
	return Leg{
		Exchange: exchange,
		Kind:     kind,
		Price:    price,
		FeeRate:  rate,
		FeeCost:  price.Mul(rate),
	}
}

// NetProfit computes the net profit of one unit traded through both legs:
// gross spread minus both legs' fee cost.
func NetProfit(buy, sell Leg) decimal.Decimal {
	gross := sell.Price.Sub(buy.Price)
	return gross.Sub(buy.FeeCost).Sub(sell.FeeCost)
}

// NetProfitPct expresses net profit as a percentage of the buy-side cost.
// Returns false when the buy price is zero, which must be rejected by the
// caller rather than propagated as infinity.
func NetProfitPct(buy, sell Leg) (decimal.Decimal, bool) {
	if buy.Price.IsZero() {
		return decimal.Zero, false
	}
	return NetProfit(buy, sell).Div(buy.Price).Mul(hundred), true
}

// EstimateLatency sums the per-leg latency estimates for a route.
func EstimateLatency(buyKind, sellKind exchangeDomain.VenueKind) time.Duration {
	return legLatency(buyKind) + legLatency(sellKind)
}

func legLatency(kind exchangeDomain.VenueKind) time.Duration {
	if kind == exchangeDomain.VenueDEX {
		return dexLegLatency
	}
	return cexLegLatency
}

// GasEstimator produces the flat per-venue-kind network cost estimate.
// A production port would source this from a live fee oracle; the flat
// constants match the simulation's scope.
type GasEstimator struct {
	DEXLegCost decimal.Decimal
	CEXLegCost decimal.Decimal
}

// DefaultGasEstimator returns the standard flat cost table.
func DefaultGasEstimator() GasEstimator {
	return GasEstimator{
		DEXLegCost: decimal.NewFromFloat(2.50),
		CEXLegCost: decimal.NewFromFloat(0.10),
	}
}

// Estimate returns the summed network cost for both legs of a route.
func (g GasEstimator) Estimate(buyKind, sellKind exchangeDomain.VenueKind) decimal.Decimal {
	return g.legCost(buyKind).Add(g.legCost(sellKind))
}

func (g GasEstimator) legCost(kind exchangeDomain.VenueKind) decimal.Decimal {
	if kind == exchangeDomain.VenueDEX {
		return g.DEXLegCost
	}
	return g.CEXLegCost
}
