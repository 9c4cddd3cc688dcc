// Package backtest evaluates the classifier offline. LeaveOneOut refits the
// scaler and classifier with each training row held out and scores the
// held-out prediction; Replay re-runs audited predictions through the
// current model and reports how many still agree.
package backtest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"econ-predictor/internal/features"
	"econ-predictor/internal/ml"

	"github.com/rs/zerolog/log"
)

// Evaluation is the outcome for one held-out row.
type Evaluation struct {
	Index     int             `json:"index"`
	Input     features.Triple `json:"input"`
	Actual    string          `json:"actual"`
	Predicted string          `json:"predicted,omitempty"`
	Skipped   bool            `json:"skipped,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// Results holds leave-one-out results.
type Results struct {
	K           int                       `json:"k"`
	Total       int                       `json:"total"`
	Evaluated   int                       `json:"evaluated"`
	Correct     int                       `json:"correct"`
	Skipped     int                       `json:"skipped"`
	Accuracy    float64                   `json:"accuracy"`
	Labels      []string                  `json:"labels"`
	Confusion   map[string]map[string]int `json:"confusion"`
	Evaluations []Evaluation              `json:"evaluations"`
	StartTime   time.Time                 `json:"start_time"`
	EndTime     time.Time                 `json:"end_time"`
}

// Engine runs leave-one-out evaluation over a cleaned training set.
type Engine struct {
	records []features.TrainingRecord
	k       int
	results *Results
}

// NewEngine creates an engine. k of 0 means ml.DefaultK.
func NewEngine(records []features.TrainingRecord, k int) *Engine {
	if k == 0 {
		k = ml.DefaultK
	}
	return &Engine{records: records, k: k}
}

// Run evaluates every row. Rows whose held-out fit fails with a degenerate
// column or too few rows are counted as skipped.
func (e *Engine) Run() error {
	if len(e.records) == 0 {
		return &features.EmptyTrainingSetError{}
	}

	log.Info().
		Int("rows", len(e.records)).
		Int("k", e.k).
		Msg("Starting leave-one-out evaluation")

	r := &Results{
		K:         e.k,
		Total:     len(e.records),
		Confusion: make(map[string]map[string]int),
		StartTime: time.Now(),
	}
	labelSet := make(map[string]struct{})

	for i, held := range e.records {
		eval := Evaluation{Index: i, Input: held.Triple, Actual: held.Status}
		labelSet[held.Status] = struct{}{}

		predicted, err := e.predictHeldOut(i)
		if err != nil {
			if !isSkippable(err) {
				return fmt.Errorf("row %d: %w", i, err)
			}
			eval.Skipped = true
			eval.Reason = err.Error()
			r.Skipped++
			log.Debug().Int("row", i).Err(err).Msg("held-out fit skipped")
		} else {
			eval.Predicted = predicted
			labelSet[predicted] = struct{}{}
			r.Evaluated++
			if predicted == held.Status {
				r.Correct++
			}
			if r.Confusion[held.Status] == nil {
				r.Confusion[held.Status] = make(map[string]int)
			}
			r.Confusion[held.Status][predicted]++
		}
		r.Evaluations = append(r.Evaluations, eval)
	}

	if r.Evaluated > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Evaluated)
	}
	for l := range labelSet {
		r.Labels = append(r.Labels, l)
	}
	sort.Strings(r.Labels)
	r.EndTime = time.Now()
	e.results = r

	log.Info().
		Int("evaluated", r.Evaluated).
		Int("skipped", r.Skipped).
		Float64("accuracy", r.Accuracy).
		Msg("Leave-one-out evaluation finished")
	return nil
}

// predictHeldOut fits on every row except i and classifies row i.
func (e *Engine) predictHeldOut(i int) (string, error) {
	train := make([]features.TrainingRecord, 0, len(e.records)-1)
	train = append(train, e.records[:i]...)
	train = append(train, e.records[i+1:]...)

	points, labels := features.Split(train)
	scaler, err := features.FitScaler(points)
	if err != nil {
		return "", err
	}
	model, err := ml.FitKNN(scaler.TransformAll(points), labels, e.k)
	if err != nil {
		return "", err
	}
	return model.Predict(scaler.Transform(e.records[i].Triple)), nil
}

func isSkippable(err error) bool {
	var degenerate *features.DegenerateFeatureError
	var insufficient *ml.InsufficientTrainingDataError
	var empty *features.EmptyTrainingSetError
	return errors.As(err, &degenerate) || errors.As(err, &insufficient) || errors.As(err, &empty)
}

// GetResults returns the results of the last Run, or nil.
func (e *Engine) GetResults() *Results {
	return e.results
}

// LeaveOneOut is a convenience wrapper around Engine.
func LeaveOneOut(records []features.TrainingRecord, k int) (*Results, error) {
	e := NewEngine(records, k)
	if err := e.Run(); err != nil {
		return nil, err
	}
	return e.GetResults(), nil
}
