// Package domain contains the core domain types for the exchange context.
package domain

import "github.com/shopspring/decimal"

// Side represents the side of a trade (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradeResult is the outcome of one simulated or real trade leg.
// Adapter failure is a first-class value here, not a panic: Success false
// with Err set means the venue rejected or dropped the order.
type TradeResult struct {
	Success        bool
	ExecutedPrice  decimal.Decimal
	ExecutedAmount decimal.Decimal
	Fee            decimal.Decimal
	TxID           string
	Err            string
}

// Failed creates a failed TradeResult carrying the venue's error string.
func Failed(reason string) TradeResult {
	return TradeResult{Success: false, Err: reason}
}
