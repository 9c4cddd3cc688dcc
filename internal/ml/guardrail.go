package ml

import (
	"math"

	"econ-predictor/internal/common"
	"econ-predictor/internal/features"
)

// Validate applies the fixed plausibility bounds to a raw request:
// inflation in [-10, 25], earnings in (0, 10000], growth in [-50, 50].
// It returns nil or a *RejectedInputError. The bounds do not depend on the
// training data.
func Validate(t features.Triple) error {
	var violations []Violation

	checkRange := func(field string, x, min, max float64) {
		switch {
		case math.IsNaN(x) || math.IsInf(x, 0):
			violations = append(violations, Violation{Field: field, Reason: ReasonNotFinite, Value: x})
		case x < min:
			violations = append(violations, Violation{Field: field, Reason: ReasonBelowMin, Value: x, Limit: min})
		case x > max:
			violations = append(violations, Violation{Field: field, Reason: ReasonAboveMax, Value: x, Limit: max})
		}
	}

	checkRange(common.ColumnInflation, t.Inflation, common.MinInflation, common.MaxInflation)

	switch e := t.Earnings; {
	case math.IsNaN(e) || math.IsInf(e, 0):
		violations = append(violations, Violation{Field: common.ColumnEarnings, Reason: ReasonNotFinite, Value: e})
	case e <= 0:
		violations = append(violations, Violation{Field: common.ColumnEarnings, Reason: ReasonNonPositive, Value: e, Limit: 0})
	case e > common.MaxEarnings:
		violations = append(violations, Violation{Field: common.ColumnEarnings, Reason: ReasonAboveMax, Value: e, Limit: common.MaxEarnings})
	}

	checkRange(common.ColumnGrowth, t.Growth, common.MinGrowth, common.MaxGrowth)

	if len(violations) > 0 {
		return &RejectedInputError{Violations: violations}
	}
	return nil
}
