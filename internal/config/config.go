package config

import "time"

// VaxchartConfig is the root configuration for a vaxchart instance.
//
// Fields tagged with env can be overridden by VAXCHART_-prefixed environment
// variables after the YAML file is loaded.
type VaxchartConfig struct {
	Instance InstanceConfig `yaml:"instance" envPrefix:"INSTANCE_"`
	Source   SourceConfig   `yaml:"source" envPrefix:"SOURCE_"`
	Dataset  DatasetConfig  `yaml:"dataset" envPrefix:"DATASET_"`
	Chart    ChartConfig    `yaml:"chart" envPrefix:"CHART_"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Writer   WriterConfig   `yaml:"writer" envPrefix:"WRITER_"`
	Poller   PollerConfig   `yaml:"poller" envPrefix:"POLLER_"`
	Metrics  MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
	Logging  LoggingConfig  `yaml:"logging" envPrefix:"LOGGING_"`
}

// InstanceConfig identifies this instance.
type InstanceConfig struct {
	ID string `yaml:"id" env:"ID"`
}

// SourceConfig holds dataset download settings.
type SourceConfig struct {
	URL          string        `yaml:"url" env:"URL"`
	UserAgent    string        `yaml:"user_agent" env:"USER_AGENT"` // Empty means vaxchart/<version>
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MaxRetries   int           `yaml:"max_retries" env:"MAX_RETRIES"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"RETRY_BACKOFF"`
	Strict       bool          `yaml:"strict" env:"STRICT"` // Fail the load on the first malformed row
}

// DatasetConfig holds registry refresh settings.
type DatasetConfig struct {
	RefreshInterval    time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL"` // 0 disables periodic refresh
	RefreshTimeout     time.Duration `yaml:"refresh_timeout" env:"REFRESH_TIMEOUT"`
	InitialLoadTimeout time.Duration `yaml:"initial_load_timeout" env:"INITIAL_LOAD_TIMEOUT"`
}

// ChartConfig holds chart presentation settings.
type ChartConfig struct {
	DefaultLocation string   `yaml:"default_location" env:"DEFAULT_LOCATION"`
	Palette         []string `yaml:"palette" env:"PALETTE" envSeparator:","`
	Width           int      `yaml:"width" env:"WIDTH"`
	Height          int      `yaml:"height" env:"HEIGHT"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	PingInterval    time.Duration `yaml:"ping_interval" env:"PING_INTERVAL"` // WebSocket keepalive
}

// DatabaseConfig holds the optional TimescaleDB connection for monthly totals.
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale" envPrefix:"TIMESCALE_"`
}

// Enabled reports whether persistence is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Timescale.Host != ""
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Name     string `yaml:"name" env:"NAME"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" env:"SSL_MODE"`
	MaxConns int    `yaml:"max_conns" env:"MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"MIN_CONNS"`
}

// RedisConfig holds the optional chart cache connection.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"` // Empty disables caching
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size" env:"BATCH_SIZE"`
	FlushInterval time.Duration `yaml:"flush_interval" env:"FLUSH_INTERVAL"`
	BufferSize    int           `yaml:"buffer_size" env:"BUFFER_SIZE"`
}

// PollerConfig holds chart warm-up settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval" env:"INTERVAL"`
	Concurrency int           `yaml:"concurrency" env:"CONCURRENCY"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"` // Per-location compute timeout
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text, json
}
