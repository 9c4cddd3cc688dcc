package metrics

// MetricsWrapper adapts Metrics to the narrow interfaces consumed by the
// ml and service packages so they do not import Prometheus.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) TrainingRowsSet(v float64) {
	w.m.TrainingRows.Set(v)
}

func (w *MetricsWrapper) ModelTrainedAtSet(v float64) {
	w.m.ModelTrainedAt.Set(v)
}

func (w *MetricsWrapper) DroppedRowsSet(v float64) {
	w.m.DroppedRows.Set(v)
}

func (w *MetricsWrapper) PredictionInc(label string) {
	w.m.Predictions.WithLabelValues(label).Inc()
}

func (w *MetricsWrapper) RejectionInc(field string) {
	w.m.Rejections.WithLabelValues(field).Inc()
}

func (w *MetricsWrapper) ParseErrorInc() {
	w.m.ParseErrors.Inc()
}

func (w *MetricsWrapper) PredictionLatencyObserve(v float64) {
	w.m.PredictionLatency.Observe(v)
}

func (w *MetricsWrapper) PersistedInc() {
	w.m.Persisted.Inc()
}

func (w *MetricsWrapper) PersistFailureInc() {
	w.m.PersistFailures.Inc()
}

func (w *MetricsWrapper) PersistRetryInc() {
	w.m.PersistRetries.Inc()
}
