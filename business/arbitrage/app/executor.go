// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/defisim/arbengine/business/arbitrage/domain"
	exchangeApp "github.com/defisim/arbengine/business/exchange/app"
	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
	pricingApp "github.com/defisim/arbengine/business/pricing/app"
	"github.com/defisim/arbengine/internal/apm"
	"github.com/defisim/arbengine/internal/apperror"
	"github.com/defisim/arbengine/internal/logger"
)

// ExecutorConfig carries the execution-side tunables.
type ExecutorConfig struct {
	// MaxConcurrent bounds in-flight executions; requests beyond the bound
	// are rejected immediately rather than queued.
	MaxConcurrent int

	// MaxExecutionTime bounds one attempt end to end, revalidation included.
	MaxExecutionTime time.Duration

	// TradeAmount is the per-leg asset quantity requested from the venue.
	TradeAmount decimal.Decimal

	// MinProfitPct is re-checked against fresh prices before any leg fires.
	MinProfitPct decimal.Decimal

	FeeModel domain.FeeModel
	Gas      domain.GasEstimator
}

type executorMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
	slotsInUse metric.Int64UpDownCounter
}

// Executor runs two-leg executions against the venue oracles. Concurrency
// is bounded by a semaphore acquired before the opportunity is claimed and
// released when the attempt settles or aborts.
type Executor struct {
	store    OpportunityStore
	cache    *pricingApp.PriceCache
	registry *exchangeApp.Registry
	history  *ExecutionHistory
	config   ExecutorConfig
	logger   logger.LoggerInterface
	tracer   apm.Tracer
	slots    chan struct{}
	metrics  executorMetrics
	nowFn    func() time.Time
}

// NewExecutor creates an Executor with MaxConcurrent execution slots.
func NewExecutor(
	store OpportunityStore,
	cache *pricingApp.PriceCache,
	registry *exchangeApp.Registry,
	history *ExecutionHistory,
	config ExecutorConfig,
	log logger.LoggerInterface,
) (*Executor, error) {
	if config.MaxConcurrent <= 0 {
		return nil, fmt.Errorf("executor: MaxConcurrent must be positive, got %d", config.MaxConcurrent)
	}

	e := &Executor{
		store:    store,
		cache:    cache,
		registry: registry,
		history:  history,
		config:   config,
		logger:   log,
		tracer:   apm.NewTracer("arbitrage-executor"),
		slots:    make(chan struct{}, config.MaxConcurrent),
		nowFn:    time.Now,
	}
	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Executor) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics.executions, err = meter.Int64Counter("executions_total",
		metric.WithDescription("Execution attempts by result"))
	if err != nil {
		return err
	}
	e.metrics.duration, err = meter.Float64Histogram("execution_duration_seconds",
		metric.WithDescription("End to end execution attempt duration"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}
	e.metrics.slotsInUse, err = meter.Int64UpDownCounter("execution_slots_in_use",
		metric.WithDescription("Execution slots currently held"))
	return err
}

// SetNowFunc overrides the clock, for tests.
func (e *Executor) SetNowFunc(fn func() time.Time) {
	e.nowFn = fn
}

// SlotsAvailable returns the number of free execution slots.
func (e *Executor) SlotsAvailable() int {
	return cap(e.slots) - len(e.slots)
}

// Execute runs one full execution attempt for the opportunity. The returned
// summary is also appended to the execution history for every attempt that
// got past admission; fast-fail rejections (not found, not active, no free
// slot) return only an error.
func (e *Executor) Execute(ctx context.Context, opportunityID string) (domain.ExecutionSummary, error) {
	ctx, span := e.tracer.StartSpanFromContext(ctx, "executor.execute",
		trace.WithAttributes(attribute.String("opportunity.id", opportunityID)))
	defer span.End()

	opp, err := e.store.Get(ctx, opportunityID)
	if err != nil {
		span.NoticeError(err)
		return domain.ExecutionSummary{}, err
	}
	if !opp.IsActive() {
		err := apperror.New(apperror.CodeOpportunityStale,
			apperror.WithContext(fmt.Sprintf("opportunity %s has status %s", opp.ID, opp.Status)))
		span.NoticeError(err)
		return domain.ExecutionSummary{}, err
	}

	// Non-blocking slot acquisition. A saturated executor rejects rather
	// than queues, so callers see back-pressure immediately.
	select {
	case e.slots <- struct{}{}:
	default:
		err := apperror.New(apperror.CodeExecutionThrottled,
			apperror.WithContext(fmt.Sprintf("all %d execution slots busy", cap(e.slots))))
		span.NoticeError(err)
		e.recordResult(ctx, "throttled", 0)
		return domain.ExecutionSummary{}, err
	}
	e.metrics.slotsInUse.Add(ctx, 1)
	defer func() {
		<-e.slots
		e.metrics.slotsInUse.Add(ctx, -1)
	}()

	// Claim the opportunity. Losing the swap means a concurrent attempt got
	// there first.
	swapped, err := e.store.CompareAndSwapStatus(ctx, opp.ID, domain.StatusActive, domain.StatusExecuting)
	if err != nil {
		span.NoticeError(err)
		return domain.ExecutionSummary{}, err
	}
	if !swapped {
		err := apperror.New(apperror.CodeOpportunityStale,
			apperror.WithContext(fmt.Sprintf("opportunity %s claimed by concurrent execution", opp.ID)))
		span.NoticeError(err)
		return domain.ExecutionSummary{}, err
	}

	execCtx := ctx
	if e.config.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.config.MaxExecutionTime)
		defer cancel()
	}

	summary := e.run(execCtx, opp)

	// Executed opportunities never return to the active pool, success or
	// not: prices have moved by definition once legs have fired, and a
	// failed revalidation means the edge is gone.
	e.deactivate(ctx, opp.ID)
	e.history.Append(summary)
	e.recordSummary(ctx, summary)

	if !summary.Success {
		return summary, apperror.New(apperror.Code(summary.FailureCode),
			apperror.WithContext(fmt.Sprintf("execution %s aborted in state %s", summary.ID, summary.State)))
	}
	return summary, nil
}

// run drives the state machine once the opportunity is claimed. It always
// returns a complete summary; failures are encoded in State and FailureCode.
func (e *Executor) run(ctx context.Context, opp domain.Opportunity) domain.ExecutionSummary {
	started := e.nowFn()
	summary := domain.ExecutionSummary{
		ID:            uuid.NewString(),
		OpportunityID: opp.ID,
		Asset:         opp.Asset,
		State:         domain.StateRequested,
		StartedAt:     started,
	}

	fail := func(state domain.ExecutionState, code apperror.Code) domain.ExecutionSummary {
		summary.State = state
		summary.FailureCode = string(code)
		summary.CompletedAt = e.nowFn()
		summary.Duration = summary.CompletedAt.Sub(started)
		return summary
	}

	buyLeg, sellLeg, expected, ok := e.revalidate(ctx, opp)
	if !ok {
		e.logger.Warn(ctx, "execution aborted on revalidation",
			"opportunity_id", opp.ID,
			"asset", opp.Asset)
		return fail(domain.StateAborted, apperror.CodeNoLongerProfitable)
	}
	summary.State = domain.StateValidated
	summary.ExpectedProfit = expected

	summary.State = domain.StateBuying
	buyResult := e.executeLeg(ctx, opp.BuyExchange, buyLeg.Kind, opp.Asset, e.config.TradeAmount, exchangeDomain.SideBuy)
	summary.BuyLeg = &buyResult
	if !buyResult.Success {
		if code, timedOut := timeoutCode(ctx); timedOut {
			return fail(domain.StateAborted, code)
		}
		e.logger.Error(ctx, "buy leg failed",
			"opportunity_id", opp.ID,
			"exchange", opp.BuyExchange,
			"reason", buyResult.Err)
		return fail(domain.StateAborted, apperror.CodeLegFailure)
	}

	// The sell leg disposes of exactly what the buy leg acquired, slippage
	// included, so an aborted sell never strands a partial position on top
	// of a stale estimate.
	summary.State = domain.StateSelling
	sellResult := e.executeLeg(ctx, opp.SellExchange, sellLeg.Kind, opp.Asset, buyResult.ExecutedAmount, exchangeDomain.SideSell)
	summary.SellLeg = &sellResult
	if !sellResult.Success {
		if code, timedOut := timeoutCode(ctx); timedOut {
			return fail(domain.StateAborted, code)
		}
		e.logger.Error(ctx, "sell leg failed after buy settled",
			"opportunity_id", opp.ID,
			"exchange", opp.SellExchange,
			"reason", sellResult.Err)
		return fail(domain.StateAborted, apperror.CodeLegFailure)
	}

	summary.State = domain.StateSettled
	summary.Success = true
	summary.ActualProfit = domain.ComputeActualProfit(buyResult, sellResult)
	summary.GasCost = e.config.Gas.Estimate(buyLeg.Kind, sellLeg.Kind)
	summary.NetProfit = summary.ActualProfit.Sub(summary.GasCost)
	summary.CompletedAt = e.nowFn()
	summary.Duration = summary.CompletedAt.Sub(started)

	e.logger.Info(ctx, "execution settled",
		"execution_id", summary.ID,
		"opportunity_id", opp.ID,
		"asset", opp.Asset,
		"net_profit", summary.NetProfit.StringFixed(4),
		"duration", summary.Duration.String())
	return summary
}

// revalidate re-prices both legs from fresh cache entries and re-checks the
// profit threshold. Any missing or stale quote fails validation.
func (e *Executor) revalidate(ctx context.Context, opp domain.Opportunity) (buy, sell domain.Leg, expected decimal.Decimal, ok bool) {
	buySample, found := e.cache.FreshPrice(opp.BuyExchange, opp.Asset)
	if !found {
		return domain.Leg{}, domain.Leg{}, decimal.Zero, false
	}
	sellSample, found := e.cache.FreshPrice(opp.SellExchange, opp.Asset)
	if !found {
		return domain.Leg{}, domain.Leg{}, decimal.Zero, false
	}

	buy = e.config.FeeModel.NewLeg(buySample.Exchange, buySample.Kind, buySample.Price)
	sell = e.config.FeeModel.NewLeg(sellSample.Exchange, sellSample.Kind, sellSample.Price)

	pct, valid := domain.NetProfitPct(buy, sell)
	if !valid || pct.LessThan(e.config.MinProfitPct) {
		return domain.Leg{}, domain.Leg{}, decimal.Zero, false
	}

	expected = domain.NetProfit(buy, sell).Mul(e.config.TradeAmount)
	return buy, sell, expected, true
}

// executeLeg runs one trade through the venue oracle and normalizes the
// outcome into a LegResult.
func (e *Executor) executeLeg(
	ctx context.Context,
	exchange string,
	kind exchangeDomain.VenueKind,
	asset string,
	amount decimal.Decimal,
	side exchangeDomain.Side,
) domain.LegResult {
	leg := domain.LegResult{
		Exchange:        exchange,
		Kind:            kind,
		Side:            side,
		RequestedAmount: amount,
	}

	oracle, found := e.registry.Oracle(exchange)
	if !found {
		leg.Err = fmt.Sprintf("exchange %q not registered", exchange)
		return leg
	}

	result, err := oracle.ExecuteTrade(ctx, asset, amount, side)
	if err != nil {
		leg.Err = err.Error()
		return leg
	}

	leg.Success = result.Success
	leg.ExecutedAmount = result.ExecutedAmount
	leg.ExecutedPrice = result.ExecutedPrice
	leg.Fee = result.Fee
	leg.TxID = result.TxID
	leg.Err = result.Err
	return leg
}

func (e *Executor) deactivate(ctx context.Context, id string) {
	inactive := domain.StatusInactive
	now := e.nowFn()
	patch := domain.OpportunityPatch{Status: &inactive, UpdatedAt: &now}
	if err := e.store.Update(ctx, id, patch); err != nil {
		e.logger.Error(ctx, "failed to deactivate opportunity after execution",
			"opportunity_id", id,
			"error", err.Error())
	}
}

func (e *Executor) recordSummary(ctx context.Context, summary domain.ExecutionSummary) {
	result := "settled"
	if !summary.Success {
		result = "aborted"
	}
	e.recordResult(ctx, result, summary.Duration)
}

func (e *Executor) recordResult(ctx context.Context, result string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("result", result))
	e.metrics.executions.Add(ctx, 1, attrs)
	if duration > 0 {
		e.metrics.duration.Record(ctx, duration.Seconds(), attrs)
	}
}

// timeoutCode distinguishes a leg that failed because the attempt deadline
// expired from a venue-side failure.
func timeoutCode(ctx context.Context) (apperror.Code, bool) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.CodeExecutionTimeout, true
	}
	return "", false
}
