// Package features holds the feature space of the economic classifier:
// the (inflation, earnings, growth) triple, the standard scaler fitted on
// the training table and the observed-range advisory shown to callers.
package features

import (
	"fmt"
	"math"

	"econ-predictor/internal/common"
)

// Feature indexes into a Triple vector. The order matches the training
// table columns and is fixed for the lifetime of a model.
const (
	Inflation = iota
	Earnings
	Growth
	Count
)

// Names returns the column names in feature order.
func Names() []string {
	return []string{common.ColumnInflation, common.ColumnEarnings, common.ColumnGrowth}
}

// Triple is one point in feature space.
type Triple struct {
	Inflation float64 `json:"inflation"`
	Earnings  float64 `json:"earnings"`
	Growth    float64 `json:"growth"`
}

// Vector returns the triple as a slice in feature order.
func (t Triple) Vector() []float64 {
	return []float64{t.Inflation, t.Earnings, t.Growth}
}

// TripleFromVector is the inverse of Vector.
func TripleFromVector(v []float64) (Triple, error) {
	if len(v) != Count {
		return Triple{}, fmt.Errorf("expected %d features, got %d", Count, len(v))
	}
	return Triple{Inflation: v[Inflation], Earnings: v[Earnings], Growth: v[Growth]}, nil
}

// Finite reports whether every component is a finite number.
func (t Triple) Finite() bool {
	for _, x := range t.Vector() {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// TrainingRecord is one labeled row of the cleaned training table.
type TrainingRecord struct {
	Triple
	Status string `json:"status"`
}

// Split separates a training set into points and labels.
func Split(records []TrainingRecord) ([]Triple, []string) {
	points := make([]Triple, len(records))
	labels := make([]string, len(records))
	for i, r := range records {
		points[i] = r.Triple
		labels[i] = r.Status
	}
	return points, labels
}
