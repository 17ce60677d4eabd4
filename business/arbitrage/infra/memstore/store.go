// Package memstore provides the in-memory OpportunityStore implementation.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	"github.com/defisim/arbengine/internal/apperror"
)

// Store is a mutex-guarded map keyed by opportunity id. Values are copied
// in and out so callers never share memory with the store.
type Store struct {
	mu   sync.RWMutex
	opps map[string]domain.Opportunity
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		opps: make(map[string]domain.Opportunity),
	}
}

// Get returns the opportunity with the given id.
func (s *Store) Get(ctx context.Context, id string) (domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.Opportunity{}, apperror.NotFound(apperror.CodeOpportunityNotFound,
			fmt.Sprintf("opportunity %s", id))
	}
	return opp, nil
}

// List returns all stored opportunities in unspecified order.
func (s *Store) List(ctx context.Context) ([]domain.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Opportunity, 0, len(s.opps))
	for _, opp := range s.opps {
		result = append(result, opp)
	}
	return result, nil
}

// Create stores a new opportunity. Creating an existing id is an error.
func (s *Store) Create(ctx context.Context, opp domain.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.opps[opp.ID]; exists {
		return apperror.Validation(apperror.CodeInvalidState,
			fmt.Sprintf("opportunity %s already exists", opp.ID))
	}
	s.opps[opp.ID] = opp
	return nil
}

// Update applies a partial update to the opportunity with the given id.
func (s *Store) Update(ctx context.Context, id string, patch domain.OpportunityPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return apperror.NotFound(apperror.CodeOpportunityNotFound,
			fmt.Sprintf("opportunity %s", id))
	}

	if patch.BuyPrice != nil {
		opp.BuyPrice = *patch.BuyPrice
	}
	if patch.SellPrice != nil {
		opp.SellPrice = *patch.SellPrice
	}
	if patch.ProfitAmount != nil {
		opp.ProfitAmount = *patch.ProfitAmount
	}
	if patch.ProfitPct != nil {
		opp.ProfitPct = *patch.ProfitPct
	}
	if patch.Status != nil {
		opp.Status = *patch.Status
	}
	if patch.UpdatedAt != nil {
		opp.UpdatedAt = *patch.UpdatedAt
	}

	s.opps[id] = opp
	return nil
}

// CompareAndSwapStatus atomically transitions the status from one state to
// another under the store lock.
func (s *Store) CompareAndSwapStatus(ctx context.Context, id string, from, to domain.OpportunityStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return false, apperror.NotFound(apperror.CodeOpportunityNotFound,
			fmt.Sprintf("opportunity %s", id))
	}
	if opp.Status != from {
		return false, nil
	}

	opp.Status = to
	s.opps[id] = opp
	return true, nil
}

// Len returns the number of stored opportunities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.opps)
}
