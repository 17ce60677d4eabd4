package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	"github.com/defisim/arbengine/internal/apperror"
)

func testOpportunity(id string) domain.Opportunity {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	return domain.Opportunity{
		ID:           id,
		Asset:        "ETH",
		BuyExchange:  "binance",
		SellExchange: "kraken",
		BuyPrice:     decimal.RequireFromString("3200"),
		SellPrice:    decimal.RequireFromString("3220"),
		ProfitAmount: decimal.RequireFromString("13.58"),
		ProfitPct:    decimal.RequireFromString("0.424375"),
		Status:       domain.StatusActive,
		DetectedAt:   now,
		UpdatedAt:    now,
	}
}

func TestGetUnknownID(t *testing.T) {
	store := New()

	_, err := store.Get(context.Background(), "missing")
	if !apperror.HasCode(err, apperror.CodeOpportunityNotFound) {
		t.Errorf("error = %v, want %s", err, apperror.CodeOpportunityNotFound)
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := New()

	if err := store.Create(ctx, testOpportunity("opp-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, testOpportunity("opp-1")); err == nil {
		t.Error("duplicate Create succeeded")
	}

	opp, err := store.Get(ctx, "opp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if opp.Asset != "ETH" || opp.Status != domain.StatusActive {
		t.Errorf("got (%s, %s), want (ETH, active)", opp.Asset, opp.Status)
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.Create(ctx, testOpportunity("opp-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	newPct := decimal.RequireFromString("1.04")
	later := time.Date(2026, 8, 26, 12, 0, 5, 0, time.UTC)
	err := store.Update(ctx, "opp-1", domain.OpportunityPatch{
		ProfitPct: &newPct,
		UpdatedAt: &later,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	opp, _ := store.Get(ctx, "opp-1")
	if !opp.ProfitPct.Equal(newPct) {
		t.Errorf("ProfitPct = %s, want %s", opp.ProfitPct, newPct)
	}
	if !opp.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %s, want %s", opp.UpdatedAt, later)
	}
	// Untouched fields survive the patch.
	if !opp.BuyPrice.Equal(decimal.RequireFromString("3200")) {
		t.Errorf("BuyPrice = %s, want 3200", opp.BuyPrice)
	}
	if opp.Status != domain.StatusActive {
		t.Errorf("Status = %s, want active", opp.Status)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	store := New()
	status := domain.StatusInactive

	err := store.Update(context.Background(), "missing", domain.OpportunityPatch{Status: &status})
	if !apperror.HasCode(err, apperror.CodeOpportunityNotFound) {
		t.Errorf("error = %v, want %s", err, apperror.CodeOpportunityNotFound)
	}
}

func TestCompareAndSwapStatus(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.Create(ctx, testOpportunity("opp-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	swapped, err := store.CompareAndSwapStatus(ctx, "opp-1", domain.StatusActive, domain.StatusExecuting)
	if err != nil || !swapped {
		t.Fatalf("first swap = (%v, %v), want (true, nil)", swapped, err)
	}

	// Only one claimant wins; the second swap sees executing, not active.
	swapped, err = store.CompareAndSwapStatus(ctx, "opp-1", domain.StatusActive, domain.StatusExecuting)
	if err != nil {
		t.Fatalf("second swap: %v", err)
	}
	if swapped {
		t.Error("second swap succeeded against non-matching status")
	}

	opp, _ := store.Get(ctx, "opp-1")
	if opp.Status != domain.StatusExecuting {
		t.Errorf("Status = %s, want executing", opp.Status)
	}

	if _, err := store.CompareAndSwapStatus(ctx, "missing", domain.StatusActive, domain.StatusExecuting); !apperror.HasCode(err, apperror.CodeOpportunityNotFound) {
		t.Errorf("error = %v, want %s", err, apperror.CodeOpportunityNotFound)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := New()
	if err := store.Create(ctx, testOpportunity("opp-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	opps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	opps[0].Status = domain.StatusInactive

	stored, _ := store.Get(ctx, "opp-1")
	if stored.Status != domain.StatusActive {
		t.Error("mutating a listed opportunity changed stored state")
	}
}
