package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Query metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_queries_total",
			Help: "Total number of queries by outcome",
		},
		[]string{"result"}, // ok, invalid, too_large
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_duration_seconds",
			Help:    "Query validation and execution time in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	QueryResultRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_result_rows",
			Help:    "Number of rows returned by successful queries",
			Buckets: []float64{0, 1, 10, 100, 500, 1000, 2500, 5000},
		},
	)

	// Dataset metrics
	DatasetOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_dataset_operations_total",
			Help: "Total number of dataset add/remove operations",
		},
		[]string{"operation", "result"}, // add/remove/load, success/error
	)

	DatasetsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_datasets_active",
			Help: "Number of datasets currently loaded",
		},
		[]string{"kind"},
	)

	DatasetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insight_dataset_records",
			Help: "Number of records held by each loaded dataset",
		},
		[]string{"dataset"},
	)
)

// Query outcomes
const (
	QueryOK       = "ok"
	QueryInvalid  = "invalid"
	QueryTooLarge = "too_large"
)

// Dataset operation results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
