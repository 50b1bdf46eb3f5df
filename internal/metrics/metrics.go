package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StageOCR           = "ocr"
	StagePrimary       = "primary_extraction"
	StageSupplementary = "supplementary_extraction"
	StageTagger        = "tagger"
	StageSummary       = "summary"
	StageReconcile     = "reconcile"
	StageCrossRef      = "cross_reference"
)

var (
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrivener_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
		},
		[]string{"stage"},
	)

	// kind is "provider" or "parse".
	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrivener_extraction_failures_total",
			Help: "Total number of failed extraction passes",
		},
		[]string{"pass", "kind"},
	)

	// outcome: success, empty, parse_error, failed
	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrivener_documents_processed_total",
			Help: "Total number of documents run through the pipeline",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrivener_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"method", "path", "status"},
	)
)

func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func RecordExtractionFailure(pass, kind string) {
	ExtractionFailures.WithLabelValues(pass, kind).Inc()
}

func RecordDocument(outcome string) {
	DocumentsProcessed.WithLabelValues(outcome).Inc()
}

func RecordHTTPRequestDuration(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}
