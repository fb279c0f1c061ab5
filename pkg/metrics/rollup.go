package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RollupMetrics records aggregation throughput and the per-row enrichment
// failures that must never be dropped silently.
type RollupMetrics struct {
	rowsProcessed      *prometheus.CounterVec
	conversionFailures *prometheus.CounterVec
	missingCostData    *prometheus.CounterVec
	queryDuration      *prometheus.HistogramVec
	cacheHits          *prometheus.CounterVec
}

// NewRollupMetrics registers the rollup metrics on the provided registerer.
func NewRollupMetrics(reg prometheus.Registerer) *RollupMetrics {
	if reg == nil {
		return &RollupMetrics{}
	}
	rowsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_rows_processed_total",
		Help: "Transaction rows folded into an aggregation run.",
	}, []string{"marketplace"})
	conversionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_conversion_failures_total",
		Help: "Rows excluded because no exchange rate was known for their currency pair.",
	}, []string{"pair"})
	missingCostData := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_missing_cost_data_total",
		Help: "Rows aggregated without a cost-table entry for their SKU or category.",
	}, []string{"category"})
	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_duration_seconds",
		Help:    "Duration of ad-hoc query execution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"metric", "dimension"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_cache_requests_total",
		Help: "Query result cache lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(rowsProcessed, conversionFailures, missingCostData, queryDuration, cacheHits)
	return &RollupMetrics{
		rowsProcessed:      rowsProcessed,
		conversionFailures: conversionFailures,
		missingCostData:    missingCostData,
		queryDuration:      queryDuration,
		cacheHits:          cacheHits,
	}
}

// AddRowsProcessed records rows folded for the given marketplace.
func (m *RollupMetrics) AddRowsProcessed(marketplace string, n int) {
	if m == nil || m.rowsProcessed == nil {
		return
	}
	m.rowsProcessed.WithLabelValues(normalizeLabel(marketplace)).Add(float64(n))
}

// IncConversionFailure counts a row dropped for an unknown currency pair.
func (m *RollupMetrics) IncConversionFailure(pair string) {
	if m == nil || m.conversionFailures == nil {
		return
	}
	m.conversionFailures.WithLabelValues(normalizeLabel(pair)).Inc()
}

// IncMissingCostData counts a row aggregated without cost-table coverage.
func (m *RollupMetrics) IncMissingCostData(category string) {
	if m == nil || m.missingCostData == nil {
		return
	}
	m.missingCostData.WithLabelValues(normalizeLabel(category)).Inc()
}

// ObserveQueryDuration records how long a query execution took.
func (m *RollupMetrics) ObserveQueryDuration(metric, dimension string, duration time.Duration) {
	if m == nil || m.queryDuration == nil {
		return
	}
	m.queryDuration.WithLabelValues(normalizeLabel(metric), normalizeLabel(dimension)).Observe(duration.Seconds())
}

// IncCacheHit and IncCacheMiss count query cache outcomes.
func (m *RollupMetrics) IncCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("hit").Inc()
}

func (m *RollupMetrics) IncCacheMiss() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("miss").Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
