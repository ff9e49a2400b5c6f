package rewriting

import "fmt"

// APICallError represents a failed call to the language model
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents a model response that is not a valid resume document
type ParseError struct {
	Message  string
	Response string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// InventedEntryError reports an entry in a tailored resume that the input resume does not contain.
type InventedEntryError struct {
	Section string
	Title   string
	Org     string
}

func (e *InventedEntryError) Error() string {
	return fmt.Sprintf("tailored resume adds %s entry %q at %q", e.Section, e.Title, e.Org)
}
