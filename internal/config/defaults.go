package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID         = "vaxchart"
	DefaultSourceURL          = "https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/vaccinations/vaccinations-by-manufacturer.csv"
	DefaultSourceTimeout      = 60 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 1 * time.Second
	DefaultRefreshInterval    = 6 * time.Hour
	DefaultRefreshTimeout     = 5 * time.Minute
	DefaultInitialLoadTimeout = 5 * time.Minute
	DefaultLocation           = "Japan"
	DefaultChartWidth         = 960
	DefaultChartHeight        = 500
	DefaultServerPort         = 8080
	DefaultReadTimeout        = 15 * time.Second
	DefaultWriteTimeout       = 30 * time.Second
	DefaultShutdownTimeout    = 10 * time.Second
	DefaultPingInterval       = 30 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultRedisTTL           = 6 * time.Hour
	DefaultBatchSize          = 1000
	DefaultFlushInterval      = 1 * time.Second
	DefaultBufferSize         = 10000
	DefaultPollInterval       = 1 * time.Hour
	DefaultPollConcurrency    = 4
	DefaultPollTimeout        = 30 * time.Second
	DefaultMetricsPath        = "/metrics"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

func (c *VaxchartConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Source defaults
	if c.Source.URL == "" {
		c.Source.URL = DefaultSourceURL
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = DefaultSourceTimeout
	}
	if c.Source.MaxRetries == 0 {
		c.Source.MaxRetries = DefaultMaxRetries
	}
	if c.Source.RetryBackoff == 0 {
		c.Source.RetryBackoff = DefaultRetryBackoff
	}

	// Dataset defaults
	if c.Dataset.RefreshInterval == 0 {
		c.Dataset.RefreshInterval = DefaultRefreshInterval
	}
	if c.Dataset.RefreshTimeout == 0 {
		c.Dataset.RefreshTimeout = DefaultRefreshTimeout
	}
	if c.Dataset.InitialLoadTimeout == 0 {
		c.Dataset.InitialLoadTimeout = DefaultInitialLoadTimeout
	}

	// Chart defaults
	if c.Chart.DefaultLocation == "" {
		c.Chart.DefaultLocation = DefaultLocation
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = DefaultChartWidth
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = DefaultChartHeight
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Redis defaults
	if c.Redis.TTL == 0 {
		c.Redis.TTL = DefaultRedisTTL
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Metrics and logging defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
