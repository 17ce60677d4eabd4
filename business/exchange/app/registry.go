// Package app contains application services and port definitions for the exchange context.
package app

import (
	"fmt"
	"sort"
	"sync"

	"github.com/defisim/arbengine/business/exchange/domain"
)

// Registry holds the registered exchanges and their price oracles.
// It is the single owner of exchange identity; only connectivity status
// mutates after registration.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	exchange domain.Exchange
	oracle   PriceOracle
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
	}
}

// Register adds an exchange and its oracle. Registering the same name twice
// is a programming error.
func (r *Registry) Register(exchange domain.Exchange, oracle PriceOracle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[exchange.Name]; exists {
		return fmt.Errorf("exchange %q already registered", exchange.Name)
	}
	if oracle == nil {
		return fmt.Errorf("exchange %q has nil oracle", exchange.Name)
	}

	r.entries[exchange.Name] = &registryEntry{
		exchange: exchange,
		oracle:   oracle,
	}
	return nil
}

// Oracle returns the oracle for the named exchange.
func (r *Registry) Oracle(name string) (PriceOracle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return entry.oracle, true
}

// Exchange returns the named exchange identity.
func (r *Registry) Exchange(name string) (domain.Exchange, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return domain.Exchange{}, false
	}
	return entry.exchange, true
}

// List returns all registered exchanges sorted by name.
func (r *Registry) List() []domain.Exchange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exchanges := make([]domain.Exchange, 0, len(r.entries))
	for _, entry := range r.entries {
		exchanges = append(exchanges, entry.exchange)
	}
	sort.Slice(exchanges, func(i, j int) bool {
		return exchanges[i].Name < exchanges[j].Name
	})
	return exchanges
}

// SetStatus flips the connectivity status of the named exchange.
func (r *Registry) SetStatus(name string, status domain.ConnectionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[name]; ok {
		entry.exchange.Status = status
	}
}

// Len returns the number of registered exchanges.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
