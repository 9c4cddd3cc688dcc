package ml

import (
	"sync"

	"econ-predictor/internal/features"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu           sync.Mutex
	trainingRows float64
	trainedAt    float64
}

func (m *MockMetrics) TrainingRowsSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainingRows = v
}

func (m *MockMetrics) ModelTrainedAtSet(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainedAt = v
}

// ScenarioRecords returns the five-row training table used across tests:
// inflation 1.0..3.0, earnings 2000..2500, growth 1.0..2.0.
func ScenarioRecords() []features.TrainingRecord {
	return []features.TrainingRecord{
		{Triple: features.Triple{Inflation: 1.0, Earnings: 2000, Growth: 1.0}, Status: "Stable"},
		{Triple: features.Triple{Inflation: 1.5, Earnings: 2100, Growth: 1.2}, Status: "Stable"},
		{Triple: features.Triple{Inflation: 2.0, Earnings: 2250, Growth: 1.5}, Status: "Growing"},
		{Triple: features.Triple{Inflation: 2.5, Earnings: 2400, Growth: 1.8}, Status: "Growing"},
		{Triple: features.Triple{Inflation: 3.0, Earnings: 2500, Growth: 2.0}, Status: "Stable"},
	}
}
