package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	"github.com/defisim/arbengine/business/arbitrage/infra/memstore"
	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
)

// countingStore wraps a store and counts mutating calls.
type countingStore struct {
	OpportunityStore

	mu      sync.Mutex
	creates int
	updates int
}

func (c *countingStore) Create(ctx context.Context, opp domain.Opportunity) error {
	c.mu.Lock()
	c.creates++
	c.mu.Unlock()
	return c.OpportunityStore.Create(ctx, opp)
}

func (c *countingStore) Update(ctx context.Context, id string, patch domain.OpportunityPatch) error {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.OpportunityStore.Update(ctx, id, patch)
}

func (c *countingStore) counts() (creates, updates int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates, c.updates
}

func testRoute(asset, buyExchange, sellExchange, buyPrice, sellPrice, profitPct string) domain.Route {
	model := domain.DefaultFeeModel()
	buy := model.NewLeg(buyExchange, exchangeDomain.VenueCEX, decimal.RequireFromString(buyPrice))
	sell := model.NewLeg(sellExchange, exchangeDomain.VenueCEX, decimal.RequireFromString(sellPrice))
	return domain.Route{
		ID:           "route-" + asset,
		Asset:        asset,
		Buy:          buy,
		Sell:         sell,
		NetProfit:    domain.NetProfit(buy, sell),
		NetProfitPct: decimal.RequireFromString(profitPct),
		DetectedAt:   testTime,
	}
}

func TestSyncCreatesNewOpportunities(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	syncer := NewStoreSyncer(store, decimal.RequireFromString("0.1"), testLogger())
	syncer.SetNowFunc(func() time.Time { return testTime })

	routes := []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3220", "0.42"),
		testRoute("BTC", "coinbase", "okx", "65000", "65500", "0.56"),
	}
	if err := syncer.Sync(ctx, routes); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	opps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2", len(opps))
	}
	for _, opp := range opps {
		if opp.Status != domain.StatusActive {
			t.Errorf("opportunity %s status = %s, want active", opp.ID, opp.Status)
		}
		if opp.ID == "" {
			t.Error("opportunity has empty ID")
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{OpportunityStore: memstore.New()}
	syncer := NewStoreSyncer(counting, decimal.RequireFromString("0.1"), testLogger())
	syncer.SetNowFunc(func() time.Time { return testTime })

	routes := []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3220", "0.42"),
	}
	if err := syncer.Sync(ctx, routes); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	if err := syncer.Sync(ctx, routes); err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	creates, updates := counting.counts()
	if creates != 1 {
		t.Errorf("creates = %d, want 1", creates)
	}
	if updates != 0 {
		t.Errorf("updates = %d, want 0 for identical input", updates)
	}
}

func TestSyncUpdatesDriftedOpportunity(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	syncer := NewStoreSyncer(store, decimal.RequireFromString("0.1"), testLogger())
	syncer.SetNowFunc(func() time.Time { return testTime })

	if err := syncer.Sync(ctx, []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3220", "0.42"),
	}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// Same triple, profit moved beyond tolerance.
	later := testTime.Add(5 * time.Second)
	syncer.SetNowFunc(func() time.Time { return later })
	if err := syncer.Sync(ctx, []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3240", "1.04"),
	}); err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	opps, _ := store.List(ctx)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1 updated in place", len(opps))
	}
	opp := opps[0]
	if !opp.ProfitPct.Equal(decimal.RequireFromString("1.04")) {
		t.Errorf("ProfitPct = %s, want 1.04", opp.ProfitPct)
	}
	if !opp.SellPrice.Equal(decimal.RequireFromString("3240")) {
		t.Errorf("SellPrice = %s, want 3240", opp.SellPrice)
	}
	if !opp.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %s, want %s", opp.UpdatedAt, later)
	}
	if !opp.DetectedAt.Equal(testTime) {
		t.Errorf("DetectedAt = %s, want original %s", opp.DetectedAt, testTime)
	}
}

func TestSyncDeactivatesVanishedOpportunity(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	syncer := NewStoreSyncer(store, decimal.RequireFromString("0.1"), testLogger())
	syncer.SetNowFunc(func() time.Time { return testTime })

	if err := syncer.Sync(ctx, []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3220", "0.42"),
	}); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := syncer.Sync(ctx, nil); err != nil {
		t.Fatalf("empty Sync: %v", err)
	}

	opps, _ := store.List(ctx)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].Status != domain.StatusInactive {
		t.Errorf("status = %s, want inactive", opps[0].Status)
	}
}

func TestSyncLeavesExecutingOpportunityAlone(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	syncer := NewStoreSyncer(store, decimal.RequireFromString("0.1"), testLogger())
	syncer.SetNowFunc(func() time.Time { return testTime })

	if err := syncer.Sync(ctx, []domain.Route{
		testRoute("ETH", "binance", "kraken", "3200", "3220", "0.42"),
	}); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	opps, _ := store.List(ctx)
	claimed, err := store.CompareAndSwapStatus(ctx, opps[0].ID, domain.StatusActive, domain.StatusExecuting)
	if err != nil || !claimed {
		t.Fatalf("claim failed: %v %v", claimed, err)
	}

	// The executing opportunity is invisible to reconciliation even when
	// its route has vanished.
	if err := syncer.Sync(ctx, nil); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	opp, err := store.Get(ctx, opps[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if opp.Status != domain.StatusExecuting {
		t.Errorf("status = %s, want executing untouched", opp.Status)
	}
}
