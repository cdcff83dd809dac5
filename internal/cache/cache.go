package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/vaxchart/internal/metrics"
	"github.com/rickgao/vaxchart/internal/model"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "vaxchart:chart:"

// ChartCache is a Redis-backed chart cache. A nil client disables it.
type ChartCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a ChartCache.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ChartCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartCache{client: client, ttl: ttl, logger: logger}
}

// Open connects to Redis at addr and verifies the connection.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Enabled reports whether a Redis client is configured.
func (c *ChartCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Key builds the cache key for a location within one dataset load.
func Key(loadID, location string) string {
	return KeyPrefix + loadID + ":" + location
}

// Get returns the cached chart, or ok=false on a miss, a disabled cache or
// any Redis error.
func (c *ChartCache) Get(ctx context.Context, loadID, location string) (*model.Chart, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, Key(loadID, location)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", "error", err, "location", location)
		}
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	var entry entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("cached chart corrupt", "error", err, "location", location)
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}

	metrics.CacheHitsTotal.Inc()
	return entry.toChart(), true
}

// Set stores a chart. Errors are logged and otherwise ignored.
func (c *ChartCache) Set(ctx context.Context, chart *model.Chart) {
	if !c.Enabled() || chart == nil {
		return
	}

	data, err := json.Marshal(newEntry(chart))
	if err != nil {
		c.logger.Warn("encode chart failed", "error", err, "location", chart.Location)
		return
	}
	if err := c.client.Set(ctx, Key(chart.LoadID, chart.Location), data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "error", err, "location", chart.Location)
	}
}

// Ping checks connectivity. A disabled cache is always healthy.
func (c *ChartCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// entry is the stored form of a chart. Bins are kept structurally because
// model.Bin marshals to the flat rendering shape.
type entry struct {
	Location string            `json:"location"`
	LoadID   string            `json:"load_id"`
	Keys     []string          `json:"keys"`
	Bins     []entryBin        `json:"bins"`
	Series   []model.Series    `json:"series"`
	Colors   map[string]string `json:"colors,omitempty"`
}

type entryBin struct {
	Month  string             `json:"month"`
	Start  time.Time          `json:"start"`
	End    time.Time          `json:"end"`
	Totals map[string]float64 `json:"totals"`
}

func newEntry(c *model.Chart) entry {
	e := entry{
		Location: c.Location,
		LoadID:   c.LoadID,
		Keys:     c.Keys,
		Bins:     make([]entryBin, len(c.Bins)),
		Series:   c.Series,
		Colors:   c.Colors,
	}
	for i, b := range c.Bins {
		e.Bins[i] = entryBin{Month: b.Month, Start: b.Start, End: b.End, Totals: b.Totals}
	}
	return e
}

func (e entry) toChart() *model.Chart {
	c := &model.Chart{
		Location: e.Location,
		LoadID:   e.LoadID,
		Keys:     e.Keys,
		Bins:     make([]model.Bin, len(e.Bins)),
		Series:   e.Series,
		Colors:   e.Colors,
	}
	for i, b := range e.Bins {
		c.Bins[i] = model.Bin{Month: b.Month, Start: b.Start, End: b.End, Totals: b.Totals}
	}
	return c
}
