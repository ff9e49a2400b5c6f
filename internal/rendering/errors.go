package rendering

import (
	"errors"
	"fmt"
)

// ErrMissingTemplate is returned by Generate when no template is given.
var ErrMissingTemplate = errors.New("missing template")

// ErrMissingResume is returned by Generate when no resume is given.
var ErrMissingResume = errors.New("missing resume")

// TemplateError represents a malformed template definition
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// UnsupportedSectionTypeError is returned when a section's type is outside the recognized set.
// Index is the section's position in the template's section list.
type UnsupportedSectionTypeError struct {
	Type  string
	Index int
}

func (e *UnsupportedSectionTypeError) Error() string {
	return fmt.Sprintf("unsupported section type %q at sections[%d]", e.Type, e.Index)
}
