// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// Risk scoring constants. These are heuristics tuned for plausibility, not
// statistically validated guarantees; what matters is that identical inputs
// always produce identical scores.
const (
	riskBaseline     = 50
	riskDEXLegPen    = 15
	riskHighSpreadP  = 10 // net profit above 1%
	riskExtremeP     = 20 // net profit above 2%, the too-good-to-be-true band
	confidenceBase   = 0.7
	confidenceCEXAdd = 0.05
	confidenceSusPen = 0.15
)

var (
	highProfitPct    = decimal.NewFromInt(1)
	extremeProfitPct = decimal.NewFromInt(2)
	lowProfitPct     = decimal.NewFromFloat(0.3)
)

// exchangeTrust adjusts risk per venue: established venues subtract risk,
// newer ones add it. Unlisted venues get no adjustment.
var exchangeTrust = map[string]int{
	"binance":   -10,
	"coinbase":  -8,
	"kraken":    -5,
	"okx":       -4,
	"uniswap":   3,
	"sushiswap": 6,
	"pancake":   8,
}

// exchangeReliability scales confidence per venue. Unlisted venues use
// defaultReliability.
var exchangeReliability = map[string]float64{
	"binance":   1.0,
	"coinbase":  0.98,
	"kraken":    0.96,
	"okx":       0.95,
	"uniswap":   0.92,
	"sushiswap": 0.88,
	"pancake":   0.85,
}

const defaultReliability = 0.9

// ScoreRisk rates a route 0-100, higher meaning riskier. Deterministic in
// its inputs.
func ScoreRisk(buyKind, sellKind exchangeDomain.VenueKind, netProfitPct decimal.Decimal, buyExchange, sellExchange string) int {
	risk := riskBaseline

	if buyKind == exchangeDomain.VenueDEX {
		risk += riskDEXLegPen
	}
	if sellKind == exchangeDomain.VenueDEX {
		risk += riskDEXLegPen
	}

	// A spread nobody else arbitraged away is usually a data problem.
	switch {
	case netProfitPct.GreaterThan(extremeProfitPct):
		risk += riskExtremeP
	case netProfitPct.GreaterThan(highProfitPct):
		risk += riskHighSpreadP
	}

	risk += exchangeTrust[buyExchange]
	risk += exchangeTrust[sellExchange]

	if risk < 0 {
		return 0
	}
	if risk > 100 {
		return 100
	}
	return risk
}

// ScoreConfidence rates a route 0-1. Deterministic in its inputs.
func ScoreConfidence(buyKind, sellKind exchangeDomain.VenueKind, netProfitPct decimal.Decimal, buyExchange, sellExchange string) float64 {
	confidence := confidenceBase

	confidence *= reliability(buyExchange)
	confidence *= reliability(sellExchange)

	if buyKind == exchangeDomain.VenueCEX {
		confidence += confidenceCEXAdd
	}
	if sellKind == exchangeDomain.VenueCEX {
		confidence += confidenceCEXAdd
	}

	// Both ends of the spectrum are suspicious: huge spreads smell like bad
	// data, hairline spreads evaporate before execution.
	if netProfitPct.GreaterThan(extremeProfitPct) || netProfitPct.LessThan(lowProfitPct) {
		confidence -= confidenceSusPen
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func reliability(exchange string) float64 {
	if r, ok := exchangeReliability[exchange]; ok {
		return r
	}
	return defaultReliability
}
