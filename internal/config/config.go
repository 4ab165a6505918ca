// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Venue      VenueConfig      `mapstructure:"venue"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Blockchain BlockchainConfig `mapstructure:"blockchain"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// VenueConfig holds venue adapter configuration for both supported venues.
type VenueConfig struct {
	Default         string        `mapstructure:"default"`         // "binance_futures" | "hyperliquid"
	DefaultSymbol   string        `mapstructure:"default_symbol"`  // "dogeusdt"
	BinanceWSHost   string        `mapstructure:"binance_ws_host"` // wss host, no scheme
	BinanceRESTHost string        `mapstructure:"binance_rest_host"`
	HyperliquidHost string        `mapstructure:"hyperliquid_host"` // shared WS/REST host
	SnapshotDepth   int           `mapstructure:"snapshot_depth"`
	SnapshotTimeout time.Duration `mapstructure:"snapshot_timeout"`
	StreamRetryWait time.Duration `mapstructure:"stream_retry_wait"`
	RequestsPerMin  int           `mapstructure:"requests_per_minute"`
}

// ClusteringConfig holds mini-batch k-means parameters.
type ClusteringConfig struct {
	K           int           `mapstructure:"k"`
	BatchSize   int           `mapstructure:"batch_size"`
	MaxIter     int           `mapstructure:"max_iter"`
	FitInterval time.Duration `mapstructure:"fit_interval"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// BlockchainConfig holds the optional Ethereum settlement-telemetry connection.
// Unset (empty HTTPURL and WebSocketURL) disables the blockchain module
// entirely rather than failing validation — it is ambient market-condition
// context, not a dependency of the core replicator.
type BlockchainConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	HTTPURL        string        `mapstructure:"http_url"`
	ChainID        uint64        `mapstructure:"chain_id"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// Enabled reports whether settlement telemetry should be started.
func (c *BlockchainConfig) Enabled() bool {
	return c.HTTPURL != "" || c.WebSocketURL != ""
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("L3R")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
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
	v.BindEnv("app.name", "L3R_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "L3R_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "L3R_LOG_LEVEL", "LOG_LEVEL")

	// Venue
	v.BindEnv("venue.default", "L3R_VENUE")
	v.BindEnv("venue.default_symbol", "L3R_SYMBOL")
	v.BindEnv("venue.binance_ws_host", "L3R_BINANCE_WS_HOST")
	v.BindEnv("venue.binance_rest_host", "L3R_BINANCE_REST_HOST")
	v.BindEnv("venue.hyperliquid_host", "L3R_HYPERLIQUID_HOST")

	// Clustering
	v.BindEnv("clustering.k", "L3R_CLUSTER_K")
	v.BindEnv("clustering.batch_size", "L3R_CLUSTER_BATCH_SIZE")
	v.BindEnv("clustering.max_iter", "L3R_CLUSTER_MAX_ITER")

	// Telemetry
	v.BindEnv("telemetry.enabled", "L3R_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "L3R_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "L3R_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")

	// Blockchain (settlement telemetry, optional)
	v.BindEnv("blockchain.websocket_url", "L3R_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("blockchain.http_url", "L3R_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("blockchain.chain_id", "L3R_ETH_CHAIN_ID", "ETH_CHAIN_ID")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "l3-replicator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Venue defaults
	v.SetDefault("venue.default", "binance_futures")
	v.SetDefault("venue.default_symbol", "dogeusdt")
	v.SetDefault("venue.binance_ws_host", "fstream.binance.com")
	v.SetDefault("venue.binance_rest_host", "fapi.binance.com")
	v.SetDefault("venue.hyperliquid_host", "api.hyperliquid.xyz")
	v.SetDefault("venue.snapshot_depth", 1000)
	v.SetDefault("venue.snapshot_timeout", "10s")
	v.SetDefault("venue.stream_retry_wait", "5s")
	v.SetDefault("venue.requests_per_minute", 1200)

	// Clustering defaults
	v.SetDefault("clustering.k", 5)
	v.SetDefault("clustering.batch_size", 32)
	v.SetDefault("clustering.max_iter", 50)
	v.SetDefault("clustering.fit_interval", "200ms")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "l3-replicator")
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Blockchain defaults (unset => disabled)
	v.SetDefault("blockchain.chain_id", 1)
	v.SetDefault("blockchain.poll_interval", "12s")
	v.SetDefault("blockchain.reconnect_delay", "5s")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Venue.DefaultSymbol == "" {
		return fmt.Errorf("venue.default_symbol is required")
	}
	switch c.Venue.Default {
	case "binance_futures", "hyperliquid":
	default:
		return fmt.Errorf("venue.default must be binance_futures or hyperliquid, got %q", c.Venue.Default)
	}
	if c.Clustering.K <= 0 {
		return fmt.Errorf("clustering.k must be positive")
	}
	if c.Clustering.BatchSize <= 0 {
		return fmt.Errorf("clustering.batch_size must be positive")
	}
	if c.Clustering.MaxIter <= 0 {
		return fmt.Errorf("clustering.max_iter must be positive")
	}
	return nil
}
