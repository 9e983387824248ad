package entity

import "fmt"

// ValidationError reports a malformed item or payment input. The operation
// is rejected and state left untouched; Field names the offending input so
// the caller can surface a field-level message.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
