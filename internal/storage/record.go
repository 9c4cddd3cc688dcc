package storage

import (
	"fmt"
	"time"

	"econ-predictor/internal/features"

	"github.com/google/uuid"
)

// PredictionRecord is one audited prediction. Records are append-only.
type PredictionRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Inflation  float64   `json:"in_inflation"`
	Earnings   float64   `json:"in_earnings"`
	Growth     float64   `json:"in_growth"`
	Prediction string    `json:"model_prediction"`
	ModelID    string    `json:"model_id"`
}

// NewPredictionRecord builds a record whose ID is derived from the
// timestamp, model id and inputs, so appending the same record twice is
// detectable by every sink.
func NewPredictionRecord(ts time.Time, in features.Triple, prediction, modelID string) PredictionRecord {
	return PredictionRecord{
		ID:         RecordID(ts, in, modelID),
		Timestamp:  ts,
		Inflation:  in.Inflation,
		Earnings:   in.Earnings,
		Growth:     in.Growth,
		Prediction: prediction,
		ModelID:    modelID,
	}
}

// RecordID returns the deterministic UUIDv5 identity of a prediction.
func RecordID(ts time.Time, in features.Triple, modelID string) string {
	name := fmt.Sprintf("%d|%s|%g|%g|%g", ts.UnixNano(), modelID, in.Inflation, in.Earnings, in.Growth)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// Input returns the triple the prediction was made on.
func (r PredictionRecord) Input() features.Triple {
	return features.Triple{Inflation: r.Inflation, Earnings: r.Earnings, Growth: r.Growth}
}
