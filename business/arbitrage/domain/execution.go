// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// ExecutionState tracks the per-attempt state machine:
// requested -> validated -> buying -> selling -> settled | aborted.
type ExecutionState string

const (
	StateRequested ExecutionState = "requested"
	StateValidated ExecutionState = "validated"
	StateBuying    ExecutionState = "leg1_buy"
	StateSelling   ExecutionState = "leg2_sell"
	StateSettled   ExecutionState = "settled"
	StateAborted   ExecutionState = "aborted"
)

// LegResult records the actual outcome of one executed leg.
type LegResult struct {
	Exchange        string
	Kind            exchangeDomain.VenueKind
	Side            exchangeDomain.Side
	RequestedAmount decimal.Decimal
	ExecutedAmount  decimal.Decimal
	ExecutedPrice   decimal.Decimal
	Fee             decimal.Decimal
	Success         bool
	TxID            string
	Err             string
}

// ExecutionSummary is the append-only record of one execution attempt,
// written exactly once per attempt whether it settled or aborted.
type ExecutionSummary struct {
	ID             string
	OpportunityID  string
	Asset          string
	State          ExecutionState
	StartedAt      time.Time
	CompletedAt    time.Time
	BuyLeg         *LegResult
	SellLeg        *LegResult
	ExpectedProfit decimal.Decimal
	ActualProfit   decimal.Decimal
	GasCost        decimal.Decimal
	NetProfit      decimal.Decimal
	Duration       time.Duration
	Success        bool
	FailureCode    string // empty on success
}

// ComputeActualProfit computes realized profit from two settled legs:
// sell proceeds net of fee minus buy cost including fee.
func ComputeActualProfit(buy, sell LegResult) decimal.Decimal {
	proceeds := sell.ExecutedAmount.Mul(sell.ExecutedPrice).Sub(sell.Fee)
	cost := buy.ExecutedAmount.Mul(buy.ExecutedPrice).Add(buy.Fee)
	return proceeds.Sub(cost)
}
