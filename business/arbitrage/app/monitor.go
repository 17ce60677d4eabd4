// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	pricingApp "github.com/defisim/arbengine/business/pricing/app"
	"github.com/defisim/arbengine/internal/logger"
	"github.com/defisim/arbengine/internal/sched"
)

// MonitorConfig carries the detection-loop tunables.
type MonitorConfig struct {
	// Interval is the period between detection cycles.
	Interval time.Duration

	// RouteTTL is how long an unrefreshed route survives in the book.
	RouteTTL time.Duration
}

// Monitor drives the periodic sample/detect/sync cycle. It owns the loop
// goroutine; all cycle work is delegated so a cycle can equally be driven
// out of band through RunCycle.
type Monitor struct {
	sampler   *pricingApp.Sampler
	detector  *Detector
	routeBook *RouteBook
	syncer    *StoreSyncer
	config    MonitorConfig
	logger    logger.LoggerInterface
	tickers   sched.TickerFactory
	nowFn     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	ticks atomic.Int64
}

// NewMonitor creates a Monitor. The ticker factory is injectable so tests
// can drive cycles manually; pass sched.NewTicker for wall-clock operation.
func NewMonitor(
	sampler *pricingApp.Sampler,
	detector *Detector,
	routeBook *RouteBook,
	syncer *StoreSyncer,
	config MonitorConfig,
	tickers sched.TickerFactory,
	log logger.LoggerInterface,
) *Monitor {
	return &Monitor{
		sampler:   sampler,
		detector:  detector,
		routeBook: routeBook,
		syncer:    syncer,
		config:    config,
		logger:    log,
		tickers:   tickers,
		nowFn:     time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (m *Monitor) SetNowFunc(fn func() time.Time) {
	m.nowFn = fn
}

// Start launches the monitoring loop. Starting a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go m.loop(ctx, m.stopCh, m.doneCh)
	m.logger.Info(ctx, "monitor started", "interval", m.config.Interval.String())
}

// Stop terminates the loop and waits for the in-flight cycle to finish.
// Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	done := m.doneCh
	m.mu.Unlock()

	<-done
}

// Running reports whether the loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// HasTicked reports whether at least one cycle has completed.
func (m *Monitor) HasTicked() bool {
	return m.ticks.Load() > 0
}

// Ticks returns the number of completed cycles.
func (m *Monitor) Ticks() int64 {
	return m.ticks.Load()
}

func (m *Monitor) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := m.tickers(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full detection cycle: sample all venues, detect
// routes, refresh the route book, reconcile the store, prune expired
// routes. Adapter failures never abort the cycle.
func (m *Monitor) RunCycle(ctx context.Context) {
	m.sampler.SampleAll(ctx)

	routes := m.detector.Detect(ctx)
	m.routeBook.Replace(routes)

	if err := m.syncer.Sync(ctx, routes); err != nil {
		m.logger.Error(ctx, "opportunity sync failed", "error", err.Error())
	}

	if pruned := m.routeBook.Prune(m.config.RouteTTL, m.nowFn()); pruned > 0 {
		m.logger.Debug(ctx, "pruned expired routes", "count", pruned)
	}

	m.ticks.Add(1)
}
