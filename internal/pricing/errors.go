package pricing

import "fmt"

// ParameterError reports a pricing input that violates a domain
// constraint, or a derived quantity (the risk-neutral probability) that
// falls outside its valid range. Pricing never starts before every
// parameter has been checked, so a ParameterError guarantees no partial
// computation took place.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func paramErrorf(field, format string, args ...any) *ParameterError {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
