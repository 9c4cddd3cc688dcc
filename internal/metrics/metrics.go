// Package metrics provides Prometheus metrics collection for the economic
// status predictor. It defines the training, prediction, guardrail and
// persistence metrics exposed via the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor.
type Metrics struct {
	// Training metrics
	TrainingRows   prometheus.Gauge // Rows in the cleaned training set
	ModelTrainedAt prometheus.Gauge // Unix time the model was trained
	DroppedRows    prometheus.Gauge // Rows dropped for missing values

	// Request metrics
	Predictions       *prometheus.CounterVec // Predictions by label
	Rejections        *prometheus.CounterVec // Guardrail rejections by field
	ParseErrors       prometheus.Counter     // Non-numeric inputs
	PredictionLatency prometheus.Histogram   // Validate + scale + classify latency

	// Persistence metrics
	Persisted       prometheus.Counter // Records appended to the sink
	PersistFailures prometheus.Counter // Appends that failed after retries
	PersistRetries  prometheus.Counter // Append retries
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		TrainingRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "training_rows",
			Help: "Number of rows in the cleaned training set",
		}),
		ModelTrainedAt: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_trained_timestamp_seconds",
			Help: "Unix time at which the model was trained",
		}),
		DroppedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "training_rows_dropped",
			Help: "Training rows dropped for missing values",
		}),
		Predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions by label",
		}, []string{"label"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "guardrail_rejections_total",
			Help: "Total number of guardrail violations by field",
		}, []string{"field"}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "input_parse_errors_total",
			Help: "Total number of non-numeric inputs",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Latency of validate, scale and classify in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		}),
		Persisted: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_persisted_total",
			Help: "Total number of prediction records appended to the sink",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "persist_failures_total",
			Help: "Total number of prediction records that could not be appended",
		}),
		PersistRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "persist_retries_total",
			Help: "Total number of append retries",
		}),
	}
}
