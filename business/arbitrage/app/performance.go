// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
)

// defaultRecentWindow is how many of the latest attempts Aggregate returns.
const defaultRecentWindow = 10

// ExecutionHistory is the append-only log of execution attempts.
type ExecutionHistory struct {
	mu      sync.RWMutex
	entries []domain.ExecutionSummary
}

// NewExecutionHistory creates an empty history.
func NewExecutionHistory() *ExecutionHistory {
	return &ExecutionHistory{}
}

// Append records one attempt. Entries are never modified or removed.
func (h *ExecutionHistory) Append(summary domain.ExecutionSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, summary)
}

// Len returns the number of recorded attempts.
func (h *ExecutionHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// AggregateStats summarizes execution performance over the whole history.
type AggregateStats struct {
	TotalAttempts  int
	Successes      int
	SuccessRate    float64
	TotalNetProfit decimal.Decimal
	AvgNetProfit   decimal.Decimal
	AvgDuration    time.Duration
	ProfitByAsset  map[string]decimal.Decimal
	Recent         []domain.ExecutionSummary
}

// Aggregate computes stats over all recorded attempts plus the last
// defaultRecentWindow attempts verbatim. An empty history yields zero
// values, not an error.
func (h *ExecutionHistory) Aggregate() AggregateStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := AggregateStats{
		TotalAttempts:  len(h.entries),
		TotalNetProfit: decimal.Zero,
		AvgNetProfit:   decimal.Zero,
		ProfitByAsset:  make(map[string]decimal.Decimal),
	}
	if len(h.entries) == 0 {
		return stats
	}

	var totalDuration time.Duration
	for _, entry := range h.entries {
		totalDuration += entry.Duration
		if !entry.Success {
			continue
		}
		stats.Successes++
		stats.TotalNetProfit = stats.TotalNetProfit.Add(entry.NetProfit)
		existing, ok := stats.ProfitByAsset[entry.Asset]
		if !ok {
			existing = decimal.Zero
		}
		stats.ProfitByAsset[entry.Asset] = existing.Add(entry.NetProfit)
	}

	stats.SuccessRate = float64(stats.Successes) / float64(stats.TotalAttempts)
	if stats.Successes > 0 {
		stats.AvgNetProfit = stats.TotalNetProfit.Div(decimal.NewFromInt(int64(stats.Successes)))
	}
	stats.AvgDuration = totalDuration / time.Duration(stats.TotalAttempts)

	start := len(h.entries) - defaultRecentWindow
	if start < 0 {
		start = 0
	}
	stats.Recent = make([]domain.ExecutionSummary, len(h.entries)-start)
	copy(stats.Recent, h.entries[start:])

	return stats
}
