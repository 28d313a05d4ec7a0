package browser

import (
	"fmt"
	"time"
)

// LoginError indicates a login attempt did not reach a verified logged-in
// state. Fatal to the current site's search, not to the overall run.
type LoginError struct {
	Message string
	Cause   error
}

func (e *LoginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("login failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("login failed: %s", e.Message)
}

func (e *LoginError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates a navigation or wait operation did not resolve
// within the session's timeout.
type TimeoutError struct {
	Timeout time.Duration
	Cause   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("browser operation timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
