// Package metrics exposes pipeline run metrics. Batch runs are short
// lived, so the metrics back an optional scrape endpoint that stays up
// for the duration of the run.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "akenergy_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	stageTotal   *prometheus.CounterVec
	stageLatency *prometheus.HistogramVec

	tableRows *prometheus.GaugeVec

	unmatchedNames prometheus.Counter

	outputsWritten *prometheus.CounterVec
)

// Init registers the pipeline metrics.
func Init() {
	registerOnce.Do(func() {
		stageTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stage_total",
				Help: "Total pipeline stage executions by stage and result",
			},
			[]string{"stage", "result"},
		)
		stageLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "stage_latency_seconds",
				Help:    "Pipeline stage latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "result"},
		)

		tableRows = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "table_rows",
				Help: "Row counts of the loaded and produced tables",
			},
			[]string{"table"},
		)

		unmatchedNames = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "unmatched_names_total",
				Help: "Total community or area names below the fuzzy-match threshold",
			},
		)

		outputsWritten = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "outputs_written_total",
				Help: "Total output artifacts written by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			stageTotal,
			stageLatency,
			tableRows,
			unmatchedNames,
			outputsWritten,
		)
	})
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStage records one stage execution.
func ObserveStage(stage, result string, duration time.Duration) {
	if stage == "" {
		stage = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if stageTotal != nil {
		stageTotal.WithLabelValues(stage, result).Inc()
	}
	if stageLatency != nil {
		stageLatency.WithLabelValues(stage, result).Observe(duration.Seconds())
	}
}

// SetTableRows records the size of a loaded or produced table.
func SetTableRows(table string, rows int) {
	if table == "" {
		table = "unknown"
	}
	if tableRows != nil {
		tableRows.WithLabelValues(table).Set(float64(rows))
	}
}

// AddUnmatchedNames increments the below-threshold match counter.
func AddUnmatchedNames(count int) {
	if count <= 0 {
		return
	}
	if unmatchedNames != nil {
		unmatchedNames.Add(float64(count))
	}
}

// IncOutputWritten records one written output artifact.
func IncOutputWritten(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if outputsWritten != nil {
		outputsWritten.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
