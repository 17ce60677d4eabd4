// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	"github.com/defisim/arbengine/internal/logger"
)

// StoreSyncer reconciles detected routes with the persisted opportunity
// collection: create on first appearance, update while the route persists,
// deactivate when it disappears. Syncing identical detector output twice
// performs no writes on the second pass.
type StoreSyncer struct {
	store     OpportunityStore
	tolerance decimal.Decimal
	logger    logger.LoggerInterface
	nowFn     func() time.Time
}

// NewStoreSyncer creates a StoreSyncer with the given profit tolerance.
func NewStoreSyncer(store OpportunityStore, tolerance decimal.Decimal, log logger.LoggerInterface) *StoreSyncer {
	return &StoreSyncer{
		store:     store,
		tolerance: tolerance,
		logger:    log,
		nowFn:     time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *StoreSyncer) SetNowFunc(fn func() time.Time) {
	s.nowFn = fn
}

// Sync reconciles routes against the store.
func (s *StoreSyncer) Sync(ctx context.Context, routes []domain.Route) error {
	persisted, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	// Index non-inactive opportunities by route triple; at most one such
	// opportunity exists per triple. Executing ones participate in the
	// index so a still-present route cannot spawn a duplicate, but the
	// executor owns their lifecycle from claim to settlement.
	liveByKey := make(map[string]domain.Opportunity)
	for _, opp := range persisted {
		if opp.Status != domain.StatusInactive {
			liveByKey[opp.Key()] = opp
		}
	}

	now := s.nowFn()
	matched := make(map[string]bool)

	for _, route := range routes {
		key := route.Key()
		existing, ok := liveByKey[key]
		if !ok {
			opp := domain.FromRoute(uuid.NewString(), route, now)
			if err := s.store.Create(ctx, opp); err != nil {
				return err
			}
			s.logger.Info(ctx, "opportunity created",
				"id", opp.ID,
				"asset", opp.Asset,
				"buy", opp.BuyExchange,
				"sell", opp.SellExchange,
				"profit_pct", opp.ProfitPct.StringFixed(4))
			continue
		}

		matched[key] = true

		if existing.Status == domain.StatusExecuting {
			continue
		}

		if domain.WithinProfitTolerance(route.NetProfitPct, existing.ProfitPct, s.tolerance) {
			// Same opportunity within tolerance, no write.
			continue
		}

		status := domain.StatusActive
		patch := domain.OpportunityPatch{
			BuyPrice:     &route.Buy.Price,
			SellPrice:    &route.Sell.Price,
			ProfitAmount: &route.NetProfit,
			ProfitPct:    &route.NetProfitPct,
			Status:       &status,
			UpdatedAt:    &now,
		}
		if err := s.store.Update(ctx, existing.ID, patch); err != nil {
			return err
		}
	}

	// Anything still active whose route vanished is no longer profitable.
	for key, opp := range liveByKey {
		if matched[key] || opp.Status == domain.StatusExecuting {
			continue
		}
		inactive := domain.StatusInactive
		patch := domain.OpportunityPatch{
			Status:    &inactive,
			UpdatedAt: &now,
		}
		if err := s.store.Update(ctx, opp.ID, patch); err != nil {
			return err
		}
		s.logger.Info(ctx, "opportunity deactivated", "id", opp.ID, "asset", opp.Asset)
	}

	return nil
}
