// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"

	"github.com/defisim/arbengine/business/arbitrage/domain"
)

// OpportunityStore is the persistence collaborator for opportunities. The
// engine treats it as an opaque key-value store; durability is the caller's
// concern.
type OpportunityStore interface {
	// Get returns the opportunity with the given id.
	Get(ctx context.Context, id string) (domain.Opportunity, error)

	// List returns all stored opportunities.
	List(ctx context.Context) ([]domain.Opportunity, error)

	// Create stores a new opportunity.
	Create(ctx context.Context, opp domain.Opportunity) error

	// Update applies a partial update to the opportunity with the given id.
	Update(ctx context.Context, id string, patch domain.OpportunityPatch) error

	// CompareAndSwapStatus atomically transitions the opportunity's status
	// from one state to another. It returns false when the current status
	// does not match from, without modifying anything.
	CompareAndSwapStatus(ctx context.Context, id string, from, to domain.OpportunityStatus) (bool, error)
}
