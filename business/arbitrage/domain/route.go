// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// Leg is one side of a candidate route: where to trade and at what price.
type Leg struct {
	Exchange string
	Kind     exchangeDomain.VenueKind
	Price    decimal.Decimal
	FeeRate  decimal.Decimal
	FeeCost  decimal.Decimal // Price * FeeRate
}

// Route is a candidate arbitrage pair produced by the detector. Routes are
// in-memory only: each detection cycle supersedes the previous route for the
// same (asset, buy, sell) triple rather than mutating it.
type Route struct {
	ID           string
	Asset        string
	Buy          Leg
	Sell         Leg
	GrossSpread  decimal.Decimal
	NetProfit    decimal.Decimal
	NetProfitPct decimal.Decimal
	EstLatency   time.Duration
	RiskScore    int     // 0-100, higher is riskier
	Confidence   float64 // 0-1
	DetectedAt   time.Time
}

// Key identifies the route's (asset, buy exchange, sell exchange) triple.
func (r Route) Key() string {
	return RouteKey(r.Asset, r.Buy.Exchange, r.Sell.Exchange)
}

// RouteKey builds the identity key for a route triple.
func RouteKey(asset, buyExchange, sellExchange string) string {
	return fmt.Sprintf("%s|%s|%s", asset, buyExchange, sellExchange)
}
