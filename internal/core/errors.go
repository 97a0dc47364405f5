package core

import "fmt"

// ValidationError reports a malformed or missing field in the input records.
// It aborts the whole request: no computation is attempted on invalid input.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "expenses" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid record %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// InsufficientDataError reports that a component has fewer records, months
// or weeks than its minimum. It is contained to the affected sub-result and
// never aborts a multi-component report.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason
}

// ModelFitError reports that a single forecasting strategy failed to fit.
// The strategy is excluded from comparison; the error never escalates.
type ModelFitError struct {
	Strategy string
	Err      error
}

func (e *ModelFitError) Error() string {
	return "model fit failed for " + e.Strategy + ": " + e.Err.Error()
}

func (e *ModelFitError) Unwrap() error { return e.Err }
