package indicators

import "fmt"

// InsufficientDataError reports an input series shorter than the minimum
// window an indicator needs. Callers treat it as "no value this cycle",
// never as a fatal condition.
type InsufficientDataError struct {
	Indicator string
	Required  int
	Actual    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs %d prices, got %d", e.Indicator, e.Required, e.Actual)
}

func insufficientData(indicator string, required, actual int) error {
	return &InsufficientDataError{Indicator: indicator, Required: required, Actual: actual}
}
