// Package ml provides the economic-status classifier: a k-nearest-neighbour
// model over standardized features, the guardrail validator that rejects
// implausible scenarios before they reach the model, and TrainedService,
// the immutable bundle produced once at startup.
package ml

import "econ-predictor/internal/features"

// PredictorInterface is the inference surface used by the prediction service.
// Implementations must be safe for concurrent use once constructed.
type PredictorInterface interface {
	// Scale applies the training-time standardization to a raw triple.
	Scale(t features.Triple) features.Triple

	// Classify returns the label for an already scaled triple.
	Classify(scaled features.Triple) string

	// Bounds returns the observed training range shown to callers.
	Bounds() features.BoundsAdvisory

	// ModelID identifies the model on persisted records.
	ModelID() string
}

// MetricsInterface defines metrics methods needed by training.
type MetricsInterface interface {
	TrainingRowsSet(float64)
	ModelTrainedAtSet(float64)
}
