package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "solarfleet_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	reportRequests *prometheus.CounterVec
	reportLatency  *prometheus.HistogramVec

	readingsTruncated prometheus.Counter

	targetDaysWithoutData prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	statusFeedClients prometheus.Gauge
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		reportRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_requests_total",
				Help: "Total report queries by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "result"},
		)

		readingsTruncated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_truncated_total",
				Help: "Total reading fetches that hit the row cap",
			},
		)

		targetDaysWithoutData = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "target_days_without_data_total",
				Help: "Total requested days missing from the target table",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		statusFeedClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "status_feed_clients",
				Help: "Connected live status feed clients",
			},
		)

		prometheus.MustRegister(
			reportRequests,
			reportLatency,
			readingsTruncated,
			targetDaysWithoutData,
			exportTotal,
			exportLatency,
			statusFeedClients,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveReport records a report query's duration and result.
func ObserveReport(endpoint, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportRequests != nil {
		reportRequests.WithLabelValues(endpoint, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(endpoint, result).Observe(duration.Seconds())
	}
}

// IncReadingsTruncated counts a reading fetch hitting the row cap.
func IncReadingsTruncated() {
	if readingsTruncated != nil {
		readingsTruncated.Inc()
	}
}

// AddTargetDaysWithoutData counts requested days missing target entries.
func AddTargetDaysWithoutData(days int) {
	if days <= 0 {
		return
	}
	if targetDaysWithoutData != nil {
		targetDaysWithoutData.Add(float64(days))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// SetStatusFeedClients sets the connected feed client count.
func SetStatusFeedClients(count int) {
	if statusFeedClients != nil {
		statusFeedClients.Set(float64(count))
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
