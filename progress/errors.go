package progress

import "fmt"

// ConfigurationError reports an invalid or missing setting on a Logger.
//
// It is returned from New when the thresholds or the reporting action are
// unusable, and from State.ShortETA / State.LongETA when no maximum count was
// configured. Use errors.As to get at the failing field, or errors.Is against
// one of the Err* values below.
type ConfigurationError struct {
	// Field is the option that failed validation (e.g. "step", "interval").
	Field string
	// Reason is a human readable description of the problem.
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid progress configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid progress configuration for %s: %s", e.Field, e.Reason)
}

// Is matches any *ConfigurationError with the same field and reason, so
// errors.Is(err, ErrInvalidStep) holds for copies as well as the sentinel.
func (e *ConfigurationError) Is(target error) bool {
	t, ok := target.(*ConfigurationError)
	if !ok {
		return false
	}
	return t.Field == e.Field && t.Reason == e.Reason
}

var (
	ErrNoThreshold     = &ConfigurationError{Reason: "a step, seconds, minutes or hours criterion is required"}
	ErrInvalidStep     = &ConfigurationError{Field: "step", Reason: "step size must be greater than 0"}
	ErrInvalidInterval = &ConfigurationError{Field: "interval", Reason: "total time must be greater than 0"}
	ErrInvalidMax      = &ConfigurationError{Field: "max", Reason: "max count must be greater than 0"}
	ErrNoAction        = &ConfigurationError{Field: "action", Reason: "a reporting action is required"}
	ErrNilClock        = &ConfigurationError{Field: "clock", Reason: "clock must not be nil"}
	ErrNoMax           = &ConfigurationError{Field: "max", Reason: "can't calculate ETA when no max is specified"}
)
