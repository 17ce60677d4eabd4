// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"sort"
	"sync"
	"time"

	"github.com/defisim/arbengine/business/arbitrage/domain"
)

// RouteBook holds the in-memory routes between detection cycles. A new
// route for the same (asset, buy, sell) triple supersedes the old one;
// pruning keeps memory bounded by dropping routes past their TTL.
type RouteBook struct {
	mu     sync.RWMutex
	routes map[string]domain.Route
}

// NewRouteBook creates an empty RouteBook.
func NewRouteBook() *RouteBook {
	return &RouteBook{
		routes: make(map[string]domain.Route),
	}
}

// Replace supersedes any existing routes with the same key.
func (b *RouteBook) Replace(routes []domain.Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, route := range routes {
		b.routes[route.Key()] = route
	}
}

// All returns the current routes sorted by net profit percentage descending.
func (b *RouteBook) All() []domain.Route {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]domain.Route, 0, len(b.routes))
	for _, route := range b.routes {
		result = append(result, route)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NetProfitPct.GreaterThan(result[j].NetProfitPct)
	})
	return result
}

// Prune drops routes detected more than ttl ago and returns how many were
// removed.
func (b *RouteBook) Prune(ttl time.Duration, now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for key, route := range b.routes {
		if now.Sub(route.DetectedAt) > ttl {
			delete(b.routes, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of held routes.
func (b *RouteBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.routes)
}
