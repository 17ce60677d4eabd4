// Package main is the entry point for the arbitrage engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	arbitrageApp "github.com/defisim/arbengine/business/arbitrage/app"
	arbitrageDomain "github.com/defisim/arbengine/business/arbitrage/domain"
	"github.com/defisim/arbengine/business/arbitrage/infra/memstore"
	exchangeApp "github.com/defisim/arbengine/business/exchange/app"
	exchangeDomain "github.com/defisim/arbengine/business/exchange/domain"
	"github.com/defisim/arbengine/business/exchange/infra/rest"
	"github.com/defisim/arbengine/business/exchange/infra/sim"
	pricingApp "github.com/defisim/arbengine/business/pricing/app"
	"github.com/defisim/arbengine/internal/apm"
	"github.com/defisim/arbengine/internal/config"
	"github.com/defisim/arbengine/internal/health"
	"github.com/defisim/arbengine/internal/logger"
	"github.com/defisim/arbengine/internal/metrics"
	"github.com/defisim/arbengine/internal/sched"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbengine %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var traceIDFn logger.TraceIDFn
	if cfg.Telemetry.Enabled {
		traceIDFn = apm.TraceIDFromContext
	}
	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, traceIDFn)
	log.Info(ctx, "starting arbitrage engine",
		"version", version,
		"environment", cfg.App.Environment,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin")

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(cfg.Health.Port, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer healthServer.Stop(ctx)

	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build exchange registry: %w", err)
	}
	log.Info(ctx, "exchanges registered", "count", registry.Len())

	healthServer.RegisterCheck("exchanges", func(ctx context.Context) (bool, string) {
		for _, ex := range registry.List() {
			if ex.Status == exchangeDomain.StatusError {
				return false, fmt.Sprintf("exchange %s in error state", ex.Name)
			}
		}
		return true, "all exchanges healthy"
	})

	service, monitor, err := buildEngine(cfg, registry, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	monitor.Start(ctx)
	defer monitor.Stop()

	return runLoop(ctx, cfg, service, log)
}

// buildRegistry registers one oracle per configured exchange.
func buildRegistry(cfg *config.Config, log logger.LoggerInterface) (*exchangeApp.Registry, error) {
	registry := exchangeApp.NewRegistry()

	for _, exCfg := range cfg.Exchanges {
		kind := exchangeDomain.VenueCEX
		if strings.EqualFold(exCfg.Kind, "DEX") {
			kind = exchangeDomain.VenueDEX
		}

		var oracle exchangeApp.PriceOracle
		switch exCfg.Adapter {
		case "rest":
			restOracle, err := rest.New(rest.DefaultConfig(exCfg.Name, kind, exCfg.Endpoint), log)
			if err != nil {
				return nil, fmt.Errorf("rest oracle for %s: %w", exCfg.Name, err)
			}
			oracle = restOracle
		default:
			oracle = sim.New(sim.DefaultConfig(exCfg.Name, kind, exCfg.Seed))
		}

		if err := registry.Register(exchangeDomain.NewExchange(exCfg.Name, kind), oracle); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// buildEngine wires the pricing and arbitrage components together.
func buildEngine(cfg *config.Config, registry *exchangeApp.Registry, log logger.LoggerInterface) (*arbitrageApp.Service, *arbitrageApp.Monitor, error) {
	cache := pricingApp.NewPriceCache(cfg.Monitor.PriceStaleness)

	sampler, err := pricingApp.NewSampler(registry, cache, cfg.Assets, log)
	if err != nil {
		return nil, nil, err
	}

	feeModel := arbitrageDomain.FeeModel{
		DEXRate: cfg.Detector.DEXFeeRateDecimal(),
		CEXRate: cfg.Detector.CEXFeeRateDecimal(),
	}

	detector, err := arbitrageApp.NewDetector(cache, arbitrageApp.DetectorConfig{
		Assets:       cfg.Assets,
		MinProfitPct: cfg.Detector.MinProfitPctDecimal(),
		FeeModel:     feeModel,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	store := memstore.New()
	routeBook := arbitrageApp.NewRouteBook()
	syncer := arbitrageApp.NewStoreSyncer(store, cfg.Detector.ProfitToleranceDecimal(), log)
	history := arbitrageApp.NewExecutionHistory()

	executor, err := arbitrageApp.NewExecutor(store, cache, registry, history, arbitrageApp.ExecutorConfig{
		MaxConcurrent:    cfg.Executor.MaxConcurrent,
		MaxExecutionTime: cfg.Executor.MaxExecutionTime,
		TradeAmount:      cfg.Executor.TradeAmountDecimal(),
		MinProfitPct:     cfg.Detector.MinProfitPctDecimal(),
		FeeModel:         feeModel,
		Gas: arbitrageDomain.GasEstimator{
			DEXLegCost: cfg.Executor.GasCostDEXDecimal(),
			CEXLegCost: cfg.Executor.GasCostCEXDecimal(),
		},
	}, log)
	if err != nil {
		return nil, nil, err
	}

	monitor := arbitrageApp.NewMonitor(sampler, detector, routeBook, syncer, arbitrageApp.MonitorConfig{
		Interval: cfg.Monitor.Interval,
		RouteTTL: cfg.Monitor.RouteTTL,
	}, sched.NewTicker, log)

	service := arbitrageApp.NewService(store, monitor, executor, history)
	return service, monitor, nil
}

// runLoop periodically reports the active opportunity set until shutdown.
func runLoop(ctx context.Context, cfg *config.Config, service *arbitrageApp.Service, log logger.LoggerInterface) error {
	reportInterval := 3 * cfg.Monitor.Interval
	if reportInterval <= 0 {
		reportInterval = 15 * time.Second
	}

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case <-ticker.C:
			opps, err := service.Opportunities(ctx)
			if err != nil {
				log.Error(ctx, "failed to list opportunities", "error", err.Error())
				continue
			}
			log.Info(ctx, "active opportunities", "count", len(opps))
			for _, opp := range opps {
				log.Info(ctx, "opportunity",
					"id", opp.ID,
					"asset", opp.Asset,
					"buy", opp.BuyExchange,
					"sell", opp.SellExchange,
					"profit_pct", opp.ProfitPct.StringFixed(4),
					"risk", opp.RiskScore,
					"confidence", fmt.Sprintf("%.2f", opp.Confidence),
				)
			}

			stats := service.PerformanceMetrics()
			if stats.TotalAttempts > 0 {
				log.Info(ctx, "execution performance",
					"attempts", stats.TotalAttempts,
					"success_rate", fmt.Sprintf("%.2f", stats.SuccessRate),
					"total_net_profit", stats.TotalNetProfit.StringFixed(2),
				)
			}
		}
	}
}
