// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpportunityStatus is the lifecycle state of a persisted opportunity.
// Execution claims an opportunity by compare-and-swapping Active to
// Executing, which is what closes the double-execution race.
type OpportunityStatus string

const (
	StatusActive    OpportunityStatus = "active"
	StatusExecuting OpportunityStatus = "executing"
	StatusInactive  OpportunityStatus = "inactive"
)

// Opportunity is the persisted projection of a detected route. At most one
// non-inactive opportunity exists per (asset, buy, sell) triple at a time.
type Opportunity struct {
	ID           string
	Asset        string
	BuyExchange  string
	SellExchange string
	BuyPrice     decimal.Decimal
	SellPrice    decimal.Decimal
	ProfitAmount decimal.Decimal
	ProfitPct    decimal.Decimal
	RiskScore    int
	Confidence   float64
	Status       OpportunityStatus
	DetectedAt   time.Time
	UpdatedAt    time.Time
}

// Key identifies the opportunity's (asset, buy, sell) triple.
func (o Opportunity) Key() string {
	return RouteKey(o.Asset, o.BuyExchange, o.SellExchange)
}

// IsActive reports whether the opportunity can still be executed.
func (o Opportunity) IsActive() bool {
	return o.Status == StatusActive
}

// FromRoute projects a route into a new active opportunity.
func FromRoute(id string, route Route, now time.Time) Opportunity {
	return Opportunity{
		ID:           id,
		Asset:        route.Asset,
		BuyExchange:  route.Buy.Exchange,
		SellExchange: route.Sell.Exchange,
		BuyPrice:     route.Buy.Price,
		SellPrice:    route.Sell.Price,
		ProfitAmount: route.NetProfit,
		ProfitPct:    route.NetProfitPct,
		RiskScore:    route.RiskScore,
		Confidence:   route.Confidence,
		Status:       StatusActive,
		DetectedAt:   now,
		UpdatedAt:    now,
	}
}

// OpportunityPatch is a partial update applied by the store. Nil fields are
// left untouched.
type OpportunityPatch struct {
	BuyPrice     *decimal.Decimal
	SellPrice    *decimal.Decimal
	ProfitAmount *decimal.Decimal
	ProfitPct    *decimal.Decimal
	Status       *OpportunityStatus
	UpdatedAt    *time.Time
}

// WithinProfitTolerance is the named route-equality comparison: two profit
// percentages within tolerance absolute points describe the same
// opportunity, so syncing skips the update to avoid churn on noise.
func WithinProfitTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
