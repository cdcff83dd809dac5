package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_fetches_total",
		Help: "Total dataset fetch attempts",
	})
	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_fetch_failures_total",
		Help: "Total dataset fetches that failed after retries or parsing",
	})
	FetchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vaxchart_fetch_duration_seconds",
		Help:    "Dataset download duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	RowsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vaxchart_rows_loaded",
		Help: "Rows in the current dataset snapshot",
	})
	RowsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_rows_skipped_total",
		Help: "Total malformed CSV rows skipped",
	})
	DatasetRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vaxchart_dataset_refreshes_total",
		Help: "Dataset refreshes by result",
	}, []string{"result"})
	ChartComputationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_chart_computations_total",
		Help: "Total transform pipeline runs",
	})
	ChartDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vaxchart_chart_duration_ms",
		Help:    "Transform pipeline duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_cache_hits_total",
		Help: "Total redis chart cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_cache_misses_total",
		Help: "Total redis chart cache misses",
	})
	WriterFlushesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_writer_flushes_total",
		Help: "Total monthly writer batch flushes",
	})
	WriterRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_writer_rows_total",
		Help: "Total monthly rows upserted",
	})
	WriterErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vaxchart_writer_errors_total",
		Help: "Total monthly writer batch failures",
	})
	WebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vaxchart_websocket_clients",
		Help: "Connected refresh-notification clients",
	})
)

func init() {
	prometheus.MustRegister(FetchesTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(FetchDurationSeconds)
	prometheus.MustRegister(RowsLoaded)
	prometheus.MustRegister(RowsSkippedTotal)
	prometheus.MustRegister(DatasetRefreshesTotal)
	prometheus.MustRegister(ChartComputationsTotal)
	prometheus.MustRegister(ChartDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(WriterFlushesTotal)
	prometheus.MustRegister(WriterRowsTotal)
	prometheus.MustRegister(WriterErrorsTotal)
	prometheus.MustRegister(WebSocketClients)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
