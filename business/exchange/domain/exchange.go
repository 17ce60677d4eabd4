// Package domain contains the core domain types for the exchange context.
package domain

// VenueKind classifies an exchange as decentralized or centralized.
// It drives fee, latency and risk modeling.
type VenueKind string

const (
	VenueDEX VenueKind = "DEX"
	VenueCEX VenueKind = "CEX"
)

// ConnectionStatus reflects the health of an exchange adapter as observed
// by the sampling loop.
type ConnectionStatus string

const (
	StatusUnknown   ConnectionStatus = "unknown"
	StatusConnected ConnectionStatus = "connected"
	StatusError     ConnectionStatus = "error"
)

// Exchange is the identity of a registered trading venue. Immutable after
// registration except for Status, which the sampling loop owns.
type Exchange struct {
	Name   string
	Kind   VenueKind
	Status ConnectionStatus
}

// NewExchange creates an Exchange in the unknown connectivity state.
func NewExchange(name string, kind VenueKind) Exchange {
	if name == "" {
		panic("exchange: empty name")
	}
	return Exchange{
		Name:   name,
		Kind:   kind,
		Status: StatusUnknown,
	}
}

// IsDEX returns true for decentralized venues.
func (e Exchange) IsDEX() bool {
	return e.Kind == VenueDEX
}

// String returns the exchange name.
func (e Exchange) String() string {
	return e.Name
}
