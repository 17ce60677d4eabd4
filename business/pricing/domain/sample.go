// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// PriceSample is the latest observed price for one (exchange, asset) pair.
// The cache keeps only the most recent sample; freshness is decided at read
// time against the configured staleness bound.
type PriceSample struct {
	Exchange  string
	Kind      exchangeDomain.VenueKind
	Asset     string
	Price     decimal.Decimal
	SampledAt time.Time
}

// IsFresh reports whether the sample is younger than the staleness bound
// relative to now. A zero bound disables the check.
func (s PriceSample) IsFresh(bound time.Duration, now time.Time) bool {
	if bound <= 0 {
		return true
	}
	return now.Sub(s.SampledAt) <= bound
}
