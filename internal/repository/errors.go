package repository

import (
	"errors"
	"fmt"
)

// InsufficientDataError is raised when the merged, horizon-filtered bar count
// for a series falls below the per-timeframe minimum. Callers must treat it
// as fatal for the affected symbol only.
type InsufficientDataError struct {
	Symbol    string
	Timeframe string
	Count     int
	Min       int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s %s: %d bars, need %d", e.Symbol, e.Timeframe, e.Count, e.Min)
}

// IsInsufficientData reports whether err wraps an InsufficientDataError.
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}
