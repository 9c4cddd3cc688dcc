package ml

import (
	"fmt"
	"strings"
)

// InsufficientTrainingDataError is returned when the cleaned training set
// has fewer rows than the neighbour count. The classifier never silently
// votes with fewer neighbours.
type InsufficientTrainingDataError struct {
	Have int
	Need int
}

func (e *InsufficientTrainingDataError) Error() string {
	return fmt.Sprintf("insufficient training data: have %d rows, need at least %d", e.Have, e.Need)
}

// Reason explains why a guardrail check failed.
type Reason string

const (
	ReasonBelowMin    Reason = "below_min"
	ReasonAboveMax    Reason = "above_max"
	ReasonNonPositive Reason = "non_positive"
	ReasonNotFinite   Reason = "not_finite"
)

// Violation describes one field that failed the guardrail.
type Violation struct {
	Field  string  `json:"field"`
	Reason Reason  `json:"reason"`
	Value  float64 `json:"value"`
	Limit  float64 `json:"limit"`
}

func (v Violation) String() string {
	switch v.Reason {
	case ReasonBelowMin:
		return fmt.Sprintf("%s %g is below the minimum of %g", v.Field, v.Value, v.Limit)
	case ReasonAboveMax:
		return fmt.Sprintf("%s %g is above the maximum of %g", v.Field, v.Value, v.Limit)
	case ReasonNonPositive:
		return fmt.Sprintf("%s %g must be greater than %g", v.Field, v.Value, v.Limit)
	default:
		return fmt.Sprintf("%s is not a finite number", v.Field)
	}
}

// RejectedInputError is returned by Validate when a request lies outside
// the economic plausibility bounds. It lists every failing field.
type RejectedInputError struct {
	Violations []Violation
}

func (e *RejectedInputError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "input rejected: " + strings.Join(parts, "; ")
}

// Fields returns the names of the failing fields in check order.
func (e *RejectedInputError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}
