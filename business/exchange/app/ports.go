// Package app contains application services and port definitions for the exchange context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/exchange/domain"
)

// PriceOracle is the per-exchange capability the engine depends on.
// Implementations may be simulated, REST-polled or anything else; the
// engine only assumes positive prices, fallible trades and non-trivial
// execution latency.
type PriceOracle interface {
	// GetPrices returns the current price for each requested asset.
	// Assets the venue does not list are simply absent from the result.
	GetPrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error)

	// ExecuteTrade executes one trade leg. A rejected or failed order is
	// reported through TradeResult, not through the error return, which is
	// reserved for transport-level failures.
	ExecuteTrade(ctx context.Context, asset string, amount decimal.Decimal, side domain.Side) (domain.TradeResult, error)
}
