package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "arbengine" {
		t.Errorf("app.name = %s, want arbengine", cfg.App.Name)
	}
	if cfg.Monitor.Interval != 5*time.Second {
		t.Errorf("monitor.interval = %s, want 5s", cfg.Monitor.Interval)
	}
	if cfg.Monitor.RouteTTL != 5*time.Minute {
		t.Errorf("monitor.route_ttl = %s, want 5m", cfg.Monitor.RouteTTL)
	}
	if cfg.Monitor.PriceStaleness != 10*time.Second {
		t.Errorf("monitor.price_staleness = %s, want 10s", cfg.Monitor.PriceStaleness)
	}
	if !cfg.Detector.MinProfitPctDecimal().Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("detector.min_profit_pct = %s, want 0.25", cfg.Detector.MinProfitPctDecimal())
	}
	if !cfg.Detector.DEXFeeRateDecimal().Equal(decimal.RequireFromString("0.003")) {
		t.Errorf("detector.dex_fee_rate = %s, want 0.003", cfg.Detector.DEXFeeRateDecimal())
	}
	if cfg.Executor.MaxConcurrent != 3 {
		t.Errorf("executor.max_concurrent = %d, want 3", cfg.Executor.MaxConcurrent)
	}
	if !cfg.Executor.GasCostDEXDecimal().Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("executor.gas_cost_dex = %s, want 2.5", cfg.Executor.GasCostDEXDecimal())
	}
	if len(cfg.Assets) != 3 {
		t.Errorf("assets = %v, want 3 defaults", cfg.Assets)
	}
	if len(cfg.Exchanges) != 2 {
		t.Errorf("exchanges = %d, want 2 defaults", len(cfg.Exchanges))
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry enabled by default")
	}
	if cfg.Health.Port != 8081 {
		t.Errorf("health.port = %d, want 8081", cfg.Health.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Monitor: MonitorConfig{
				Interval:       5 * time.Second,
				RouteTTL:       5 * time.Minute,
				PriceStaleness: 10 * time.Second,
			},
			Detector: DetectorConfig{MinProfitPct: 0.25},
			Executor: ExecutorConfig{
				MaxConcurrent:    3,
				MaxExecutionTime: 30 * time.Second,
				TradeAmount:      1.0,
			},
			Assets: []string{"ETH"},
			Exchanges: []ExchangeConfig{
				{Name: "uniswap", Kind: "DEX", Adapter: "sim"},
				{Name: "binance", Kind: "CEX", Adapter: "sim"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }, true},
		{"negative profit threshold", func(c *Config) { c.Detector.MinProfitPct = -1 }, true},
		{"zero max concurrent", func(c *Config) { c.Executor.MaxConcurrent = 0 }, true},
		{"zero trade amount", func(c *Config) { c.Executor.TradeAmount = 0 }, true},
		{"no assets", func(c *Config) { c.Assets = nil }, true},
		{"single exchange", func(c *Config) { c.Exchanges = c.Exchanges[:1] }, true},
		{"bad kind", func(c *Config) { c.Exchanges[0].Kind = "OTC" }, true},
		{"rest without endpoint", func(c *Config) { c.Exchanges[0].Adapter = "rest" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
