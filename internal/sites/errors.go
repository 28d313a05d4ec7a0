package sites

import "fmt"

// SearchError indicates a source search failed before any usable results were
// produced.
type SearchError struct {
	Source  string
	Message string
	Cause   error
}

func (e *SearchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error (%s): %s", e.Source, e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// ExtractionError indicates page content could not be converted into profile
// data.
type ExtractionError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error (%s): %s", e.Source, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
