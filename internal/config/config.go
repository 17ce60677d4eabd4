// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig        `mapstructure:"app"`
	Monitor   MonitorConfig    `mapstructure:"monitor"`
	Detector  DetectorConfig   `mapstructure:"detector"`
	Executor  ExecutorConfig   `mapstructure:"executor"`
	Assets    []string         `mapstructure:"assets"`
	Exchanges []ExchangeConfig `mapstructure:"exchanges"`
	Telemetry TelemetryConfig  `mapstructure:"telemetry"`
	Health    HealthConfig     `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// MonitorConfig holds monitoring loop settings.
type MonitorConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	RouteTTL       time.Duration `mapstructure:"route_ttl"`
	PriceStaleness time.Duration `mapstructure:"price_staleness"`
}

// DetectorConfig holds opportunity detection settings.
type DetectorConfig struct {
	MinProfitPct    float64 `mapstructure:"min_profit_pct"`
	DEXFeeRate      float64 `mapstructure:"dex_fee_rate"`
	CEXFeeRate      float64 `mapstructure:"cex_fee_rate"`
	ProfitTolerance float64 `mapstructure:"profit_tolerance"`
}

// MinProfitPctDecimal returns the profit threshold as decimal.Decimal.
func (c *DetectorConfig) MinProfitPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPct)
}

// DEXFeeRateDecimal returns the DEX leg fee rate as decimal.Decimal.
func (c *DetectorConfig) DEXFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.DEXFeeRate)
}

// CEXFeeRateDecimal returns the CEX leg fee rate as decimal.Decimal.
func (c *DetectorConfig) CEXFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.CEXFeeRate)
}

// ProfitToleranceDecimal returns the route-equality tolerance as decimal.Decimal.
func (c *DetectorConfig) ProfitToleranceDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ProfitTolerance)
}

// ExecutorConfig holds trade execution settings.
type ExecutorConfig struct {
	MaxConcurrent    int           `mapstructure:"max_concurrent"`
	MaxExecutionTime time.Duration `mapstructure:"max_execution_time"`
	TradeAmount      float64       `mapstructure:"trade_amount"`
	GasCostDEX       float64       `mapstructure:"gas_cost_dex"`
	GasCostCEX       float64       `mapstructure:"gas_cost_cex"`
}

// TradeAmountDecimal returns the per-execution trade amount as decimal.Decimal.
func (c *ExecutorConfig) TradeAmountDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TradeAmount)
}

// GasCostDEXDecimal returns the per-DEX-leg gas cost estimate as decimal.Decimal.
func (c *ExecutorConfig) GasCostDEXDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.GasCostDEX)
}

// GasCostCEXDecimal returns the per-CEX-leg network cost estimate as decimal.Decimal.
func (c *ExecutorConfig) GasCostCEXDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.GasCostCEX)
}

// ExchangeConfig describes one exchange adapter to register.
type ExchangeConfig struct {
	Name     string `mapstructure:"name"`
	Kind     string `mapstructure:"kind"`     // "DEX" or "CEX"
	Adapter  string `mapstructure:"adapter"`  // "sim" or "rest"
	Endpoint string `mapstructure:"endpoint"` // rest adapter only
	Seed     int64  `mapstructure:"seed"`     // sim adapter only
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds health check server configuration.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Monitor
	v.BindEnv("monitor.interval", "ARB_MONITOR_INTERVAL")
	v.BindEnv("monitor.route_ttl", "ARB_ROUTE_TTL")
	v.BindEnv("monitor.price_staleness", "ARB_PRICE_STALENESS")

	// Detector
	v.BindEnv("detector.min_profit_pct", "ARB_MIN_PROFIT_PCT")
	v.BindEnv("detector.dex_fee_rate", "ARB_DEX_FEE_RATE")
	v.BindEnv("detector.cex_fee_rate", "ARB_CEX_FEE_RATE")

	// Executor
	v.BindEnv("executor.max_concurrent", "ARB_MAX_CONCURRENT_EXECUTIONS")
	v.BindEnv("executor.max_execution_time", "ARB_MAX_EXECUTION_TIME")
	v.BindEnv("executor.trade_amount", "ARB_TRADE_AMOUNT")

	// Assets
	v.BindEnv("assets", "ARB_ASSETS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbengine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Monitor defaults
	v.SetDefault("monitor.interval", "5s")
	v.SetDefault("monitor.route_ttl", "5m")
	v.SetDefault("monitor.price_staleness", "10s") // 2x interval

	// Detector defaults
	v.SetDefault("detector.min_profit_pct", 0.25)
	v.SetDefault("detector.dex_fee_rate", 0.003) // 0.3% per DEX leg
	v.SetDefault("detector.cex_fee_rate", 0.001) // 0.1% per CEX leg
	v.SetDefault("detector.profit_tolerance", 0.1)

	// Executor defaults
	v.SetDefault("executor.max_concurrent", 3)
	v.SetDefault("executor.max_execution_time", "30s")
	v.SetDefault("executor.trade_amount", 1.0)
	v.SetDefault("executor.gas_cost_dex", 2.50)
	v.SetDefault("executor.gas_cost_cex", 0.10)

	// Tracked assets
	v.SetDefault("assets", []string{"ETH", "BTC", "SOL"})

	// Exchange defaults: two simulated venues so the engine runs out of the box
	v.SetDefault("exchanges", []map[string]any{
		{"name": "uniswap", "kind": "DEX", "adapter": "sim", "seed": 1},
		{"name": "binance", "kind": "CEX", "adapter": "sim", "seed": 2},
	})

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbengine")
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if c.Monitor.RouteTTL <= 0 {
		return fmt.Errorf("monitor.route_ttl must be positive")
	}
	if c.Detector.MinProfitPct < 0 {
		return fmt.Errorf("detector.min_profit_pct cannot be negative")
	}
	if c.Executor.MaxConcurrent < 1 {
		return fmt.Errorf("executor.max_concurrent must be at least 1")
	}
	if c.Executor.TradeAmount <= 0 {
		return fmt.Errorf("executor.trade_amount must be positive")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("assets cannot be empty")
	}
	if len(c.Exchanges) < 2 {
		return fmt.Errorf("at least two exchanges are required for arbitrage")
	}
	for _, ex := range c.Exchanges {
		if ex.Name == "" {
			return fmt.Errorf("exchange name cannot be empty")
		}
		if ex.Kind != "DEX" && ex.Kind != "CEX" {
			return fmt.Errorf("invalid exchange kind %q for %s (want DEX or CEX)", ex.Kind, ex.Name)
		}
		if ex.Adapter == "rest" && ex.Endpoint == "" {
			return fmt.Errorf("exchange %s uses the rest adapter but has no endpoint", ex.Name)
		}
	}
	return nil
}
