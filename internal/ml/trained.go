package ml

import (
	"time"

	"econ-predictor/internal/features"

	"github.com/rs/zerolog/log"
)

// TrainConfig controls a training run.
type TrainConfig struct {
	ModelID string
	Metrics MetricsInterface
}

// TrainedService is the read-only snapshot built once at startup: scaler
// parameters, the fitted classifier and the observed-range advisory.
// Nothing mutates it after Train returns, so it may be shared by concurrent
// request handlers without locking.
type TrainedService struct {
	scaler    features.ScalerParams
	model     *KNN
	bounds    features.BoundsAdvisory
	modelID   string
	trainedAt time.Time
}

var _ PredictorInterface = (*TrainedService)(nil)

// Train fits the scaler, classifier and bounds advisory on a cleaned
// training set. The classifier always uses DefaultK neighbours. Startup
// errors are *InsufficientTrainingDataError and
// *features.DegenerateFeatureError.
func Train(records []features.TrainingRecord, config TrainConfig) (*TrainedService, error) {
	if len(records) < DefaultK {
		return nil, &InsufficientTrainingDataError{Have: len(records), Need: DefaultK}
	}

	points, labels := features.Split(records)

	scaler, err := features.FitScaler(points)
	if err != nil {
		return nil, err
	}

	model, err := FitKNN(scaler.TransformAll(points), labels, DefaultK)
	if err != nil {
		return nil, err
	}

	bounds, err := features.ComputeBounds(points)
	if err != nil {
		return nil, err
	}

	ts := &TrainedService{
		scaler:    scaler,
		model:     model,
		bounds:    bounds,
		modelID:   config.ModelID,
		trainedAt: time.Now(),
	}

	if config.Metrics != nil {
		config.Metrics.TrainingRowsSet(float64(len(records)))
		config.Metrics.ModelTrainedAtSet(float64(ts.trainedAt.Unix()))
	}

	log.Info().
		Str("model_id", ts.modelID).
		Int("rows", len(records)).
		Int("k", model.K()).
		Strs("labels", model.Labels()).
		Msg("model trained")

	return ts, nil
}

// Predict scales a raw triple with the training parameters and classifies it.
// Callers are expected to have run Validate first.
func (s *TrainedService) Predict(t features.Triple) string {
	return s.model.Predict(s.scaler.Transform(t))
}

// Classify labels an already scaled triple.
func (s *TrainedService) Classify(scaled features.Triple) string {
	return s.model.Predict(scaled)
}

// Neighbors returns the k nearest training points to a raw triple.
func (s *TrainedService) Neighbors(t features.Triple) []Neighbor {
	return s.model.Neighbors(s.scaler.Transform(t))
}

// Scale exposes the fitted transform.
func (s *TrainedService) Scale(t features.Triple) features.Triple {
	return s.scaler.Transform(t)
}

func (s *TrainedService) Bounds() features.BoundsAdvisory { return s.bounds }

func (s *TrainedService) ModelID() string { return s.modelID }

func (s *TrainedService) ScalerParams() features.ScalerParams { return s.scaler }

func (s *TrainedService) TrainedAt() time.Time { return s.trainedAt }

func (s *TrainedService) K() int { return s.model.K() }

func (s *TrainedService) Size() int { return s.model.Size() }

func (s *TrainedService) Labels() []string { return s.model.Labels() }
