package planner

import "fmt"

// IntentParseError indicates a free-text query could not be converted into
// valid search parameters.
type IntentParseError struct {
	Message string
	Cause   error
}

func (e *IntentParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("intent parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("intent parse error: %s", e.Message)
}

func (e *IntentParseError) Unwrap() error {
	return e.Cause
}
