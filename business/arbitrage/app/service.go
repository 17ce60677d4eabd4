// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"sort"

	"github.com/defisim/arbengine/business/arbitrage/domain"
)

// Service is the engine facade callers wire against: list opportunities,
// trigger detection, execute, and read performance aggregates.
type Service struct {
	store    OpportunityStore
	monitor  *Monitor
	executor *Executor
	history  *ExecutionHistory
}

// NewService creates the facade over the assembled engine components.
func NewService(store OpportunityStore, monitor *Monitor, executor *Executor, history *ExecutionHistory) *Service {
	return &Service{
		store:    store,
		monitor:  monitor,
		executor: executor,
		history:  history,
	}
}

// Opportunities returns the active opportunities sorted by profit
// percentage descending. When no detection cycle has run yet it runs one
// inline, so the first caller never sees an empty engine.
func (s *Service) Opportunities(ctx context.Context) ([]domain.Opportunity, error) {
	if !s.monitor.HasTicked() {
		s.monitor.RunCycle(ctx)
	}
	return s.activeSorted(ctx)
}

// Execute runs one execution attempt for the opportunity.
func (s *Service) Execute(ctx context.Context, opportunityID string) (domain.ExecutionSummary, error) {
	return s.executor.Execute(ctx, opportunityID)
}

// DetectNewOpportunities forces an immediate detection cycle outside the
// periodic schedule and returns the refreshed active set.
func (s *Service) DetectNewOpportunities(ctx context.Context) ([]domain.Opportunity, error) {
	s.monitor.RunCycle(ctx)
	return s.activeSorted(ctx)
}

// PerformanceMetrics returns aggregated execution statistics.
func (s *Service) PerformanceMetrics() AggregateStats {
	return s.history.Aggregate()
}

func (s *Service) activeSorted(ctx context.Context) ([]domain.Opportunity, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]domain.Opportunity, 0, len(all))
	for _, opp := range all {
		if opp.IsActive() {
			active = append(active, opp)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ProfitPct.GreaterThan(active[j].ProfitPct)
	})
	return active, nil
}
