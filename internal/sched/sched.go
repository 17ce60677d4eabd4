// Package sched abstracts periodic scheduling so loops can be driven
// manually in tests instead of sleeping wall-clock time.
package sched

import "time"

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// C returns the channel on which ticks are delivered.
	C() <-chan time.Time

	// Stop stops tick delivery. It does not close the channel.
	Stop()
}

// TickerFactory creates a Ticker with the given period.
type TickerFactory func(period time.Duration) Ticker

// realTicker wraps time.Ticker.
type realTicker struct {
	t *time.Ticker
}

// NewTicker returns a wall-clock Ticker backed by time.Ticker.
func NewTicker(period time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(period)}
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}

// ManualTicker is a test Ticker driven by explicit Tick calls.
type ManualTicker struct {
	ch chan time.Time
}

// NewManualTicker creates a ManualTicker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, 1)}
}

// C returns the tick channel.
func (m *ManualTicker) C() <-chan time.Time {
	return m.ch
}

// Tick delivers one tick, blocking until the consumer receives it.
func (m *ManualTicker) Tick() {
	m.ch <- time.Now()
}

// Stop is a no-op for the manual ticker.
func (m *ManualTicker) Stop() {}

// Factory returns a TickerFactory that always yields this ManualTicker.
func (m *ManualTicker) Factory() TickerFactory {
	return func(time.Duration) Ticker { return m }
}
