package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_TrainingGauges(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.TrainingRowsSet(120)
	wrapper.ModelTrainedAtSet(1700000000)
	wrapper.DroppedRowsSet(3)

	if v := testutil.ToFloat64(metrics.TrainingRows); v != 120 {
		t.Errorf("Expected training rows 120, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.ModelTrainedAt); v != 1700000000 {
		t.Errorf("Expected trained-at 1700000000, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.DroppedRows); v != 3 {
		t.Errorf("Expected dropped rows 3, got %f", v)
	}
}

func TestMetricsWrapper_PredictionsByLabel(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.PredictionInc("Stable")
	wrapper.PredictionInc("Stable")
	wrapper.PredictionInc("Growing")

	if v := testutil.ToFloat64(metrics.Predictions.WithLabelValues("Stable")); v != 2 {
		t.Errorf("Expected 2 Stable predictions, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.Predictions.WithLabelValues("Growing")); v != 1 {
		t.Errorf("Expected 1 Growing prediction, got %f", v)
	}
}

func TestMetricsWrapper_RequestCounters(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.RejectionInc("CPI_Inflation")
	wrapper.ParseErrorInc()
	wrapper.ParseErrorInc()
	wrapper.PersistedInc()
	wrapper.PersistFailureInc()
	wrapper.PersistRetryInc()
	wrapper.PredictionLatencyObserve(0.001)

	if v := testutil.ToFloat64(metrics.Rejections.WithLabelValues("CPI_Inflation")); v != 1 {
		t.Errorf("Expected 1 inflation rejection, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.ParseErrors); v != 2 {
		t.Errorf("Expected 2 parse errors, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.Persisted); v != 1 {
		t.Errorf("Expected 1 persisted record, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PersistFailures); v != 1 {
		t.Errorf("Expected 1 persist failure, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PersistRetries); v != 1 {
		t.Errorf("Expected 1 persist retry, got %f", v)
	}
	if n := testutil.CollectAndCount(metrics.PredictionLatency); n != 1 {
		t.Errorf("Expected latency histogram to be collected once, got %d", n)
	}
}

func TestNewWithRegistry_Isolated(t *testing.T) {
	// Two registries must not collide on metric names.
	NewWithRegistry(prometheus.NewRegistry())
	NewWithRegistry(prometheus.NewRegistry())
}
