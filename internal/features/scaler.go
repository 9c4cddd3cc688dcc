package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DegenerateFeatureError is returned when a training column has zero
// variance. Standardizing such a column would divide by zero.
type DegenerateFeatureError struct {
	Feature string
	Value   float64
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("degenerate feature %s: constant value %g across all training rows", e.Feature, e.Value)
}

// EmptyTrainingSetError is returned when there is nothing to fit on.
type EmptyTrainingSetError struct{}

func (e *EmptyTrainingSetError) Error() string {
	return "training set is empty after removing incomplete rows"
}

// FeatureStats holds the standardization parameters of one feature.
type FeatureStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// ScalerParams are fixed at training time and used unchanged for every
// request afterwards.
type ScalerParams struct {
	Stats [Count]FeatureStats `json:"stats"`
}

// FitScaler computes the per-feature mean and population standard deviation.
func FitScaler(points []Triple) (ScalerParams, error) {
	if len(points) == 0 {
		return ScalerParams{}, &EmptyTrainingSetError{}
	}

	columns := make([][]float64, Count)
	for f := range columns {
		columns[f] = make([]float64, len(points))
	}
	for i, p := range points {
		for f, x := range p.Vector() {
			columns[f][i] = x
		}
	}

	var params ScalerParams
	names := Names()
	for f, col := range columns {
		mean, std := stat.PopMeanStdDev(col, nil)
		// A constant column can leave rounding residue in std.
		if std == 0 || floats.Min(col) == floats.Max(col) {
			return ScalerParams{}, &DegenerateFeatureError{Feature: names[f], Value: col[0]}
		}
		params.Stats[f] = FeatureStats{Mean: mean, StdDev: std}
	}
	return params, nil
}

// Transform standardizes a triple as (x - mean) / std per feature.
// It is a pure function of its inputs.
func (p ScalerParams) Transform(t Triple) Triple {
	v := t.Vector()
	for f := range v {
		v[f] = (v[f] - p.Stats[f].Mean) / p.Stats[f].StdDev
	}
	out, _ := TripleFromVector(v)
	return out
}

// TransformAll applies Transform to every point and returns a new slice.
func (p ScalerParams) TransformAll(points []Triple) []Triple {
	out := make([]Triple, len(points))
	for i, t := range points {
		out[i] = p.Transform(t)
	}
	return out
}
