package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
)

func settledSummary(id, asset, netProfit string, duration time.Duration) domain.ExecutionSummary {
	return domain.ExecutionSummary{
		ID:        id,
		Asset:     asset,
		State:     domain.StateSettled,
		Success:   true,
		NetProfit: decimal.RequireFromString(netProfit),
		Duration:  duration,
	}
}

func abortedSummary(id, asset string, duration time.Duration) domain.ExecutionSummary {
	return domain.ExecutionSummary{
		ID:          id,
		Asset:       asset,
		State:       domain.StateAborted,
		FailureCode: "LEG_FAILURE",
		Duration:    duration,
	}
}

func TestAggregateEmptyHistory(t *testing.T) {
	history := NewExecutionHistory()

	stats := history.Aggregate()
	if stats.TotalAttempts != 0 || stats.Successes != 0 {
		t.Errorf("counts = (%d, %d), want zeroes", stats.TotalAttempts, stats.Successes)
	}
	if stats.SuccessRate != 0 {
		t.Errorf("SuccessRate = %f, want 0", stats.SuccessRate)
	}
	if !stats.TotalNetProfit.IsZero() || !stats.AvgNetProfit.IsZero() {
		t.Errorf("profit = (%s, %s), want zeroes", stats.TotalNetProfit, stats.AvgNetProfit)
	}
	if len(stats.Recent) != 0 {
		t.Errorf("Recent = %d entries, want 0", len(stats.Recent))
	}
}

func TestAggregate(t *testing.T) {
	history := NewExecutionHistory()
	history.Append(settledSummary("e1", "ETH", "10", 2*time.Second))
	history.Append(abortedSummary("e2", "ETH", time.Second))
	history.Append(settledSummary("e3", "BTC", "20", 3*time.Second))

	stats := history.Aggregate()
	if stats.TotalAttempts != 3 || stats.Successes != 2 {
		t.Errorf("counts = (%d, %d), want (3, 2)", stats.TotalAttempts, stats.Successes)
	}
	if want := 2.0 / 3.0; stats.SuccessRate != want {
		t.Errorf("SuccessRate = %f, want %f", stats.SuccessRate, want)
	}
	if !stats.TotalNetProfit.Equal(decimal.RequireFromString("30")) {
		t.Errorf("TotalNetProfit = %s, want 30", stats.TotalNetProfit)
	}
	// Average over successes, not attempts: aborted runs have no profit.
	if !stats.AvgNetProfit.Equal(decimal.RequireFromString("15")) {
		t.Errorf("AvgNetProfit = %s, want 15", stats.AvgNetProfit)
	}
	if stats.AvgDuration != 2*time.Second {
		t.Errorf("AvgDuration = %s, want 2s", stats.AvgDuration)
	}
	if !stats.ProfitByAsset["ETH"].Equal(decimal.RequireFromString("10")) {
		t.Errorf("ProfitByAsset[ETH] = %s, want 10", stats.ProfitByAsset["ETH"])
	}
	if !stats.ProfitByAsset["BTC"].Equal(decimal.RequireFromString("20")) {
		t.Errorf("ProfitByAsset[BTC] = %s, want 20", stats.ProfitByAsset["BTC"])
	}
	if len(stats.Recent) != 3 {
		t.Errorf("Recent = %d entries, want 3", len(stats.Recent))
	}
}

func TestAggregateRecentWindow(t *testing.T) {
	history := NewExecutionHistory()
	for i := 0; i < 15; i++ {
		history.Append(settledSummary(fmt.Sprintf("e%d", i), "ETH", "1", time.Second))
	}

	stats := history.Aggregate()
	if len(stats.Recent) != defaultRecentWindow {
		t.Fatalf("Recent = %d entries, want %d", len(stats.Recent), defaultRecentWindow)
	}
	if stats.Recent[0].ID != "e5" || stats.Recent[len(stats.Recent)-1].ID != "e14" {
		t.Errorf("Recent spans %s..%s, want e5..e14",
			stats.Recent[0].ID, stats.Recent[len(stats.Recent)-1].ID)
	}
}
