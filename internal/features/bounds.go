package features

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Range is the observed minimum and maximum of one feature.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// BoundsAdvisory is the observed historical range of each feature.
// It is shown to callers as guidance and never enforced.
type BoundsAdvisory struct {
	Inflation Range `json:"inflation"`
	Earnings  Range `json:"earnings"`
	Growth    Range `json:"growth"`
}

// ComputeBounds derives the advisory from the cleaned training points.
func ComputeBounds(points []Triple) (BoundsAdvisory, error) {
	if len(points) == 0 {
		return BoundsAdvisory{}, &EmptyTrainingSetError{}
	}

	cols := [Count][]float64{}
	for _, p := range points {
		for f, x := range p.Vector() {
			cols[f] = append(cols[f], x)
		}
	}

	rangeOf := func(f int) Range {
		return Range{Min: floats.Min(cols[f]), Max: floats.Max(cols[f])}
	}
	return BoundsAdvisory{
		Inflation: rangeOf(Inflation),
		Earnings:  rangeOf(Earnings),
		Growth:    rangeOf(Growth),
	}, nil
}

// Note renders the guidance note printed before each prompt.
func (b BoundsAdvisory) Note() string {
	var sb strings.Builder
	sb.WriteString("NOTE: Use inputs based on our warehouse data points:\n")
	fmt.Fprintf(&sb, "   Inflation: %.2f%% to %.2f%%\n", b.Inflation.Min, b.Inflation.Max)
	fmt.Fprintf(&sb, "   Earnings:  $%.2f to $%.2f\n", b.Earnings.Min, b.Earnings.Max)
	fmt.Fprintf(&sb, "   Growth:    %.2f%% to %.2f%%\n", b.Growth.Min, b.Growth.Max)
	return sb.String()
}
