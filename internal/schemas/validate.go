// Package schemas provides JSON Schema validation for resume documents.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchema string

var (
	compileOnce    sync.Once
	compiledResume *gojsonschema.Schema
	compileErr     error
)

// ResumeSchema returns the JSON Schema every resume document must satisfy.
func ResumeSchema() string {
	return resumeSchema
}

// ValidationError lists every schema violation in a document.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is one violation at a field path such as experience.0.content.
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Summary joins the violations on one line.
func (ve *ValidationError) Summary() string {
	parts := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		parts[i] = err.Field + ": " + err.Message
	}
	return strings.Join(parts, "; ")
}

func resumeValidator() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledResume, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSchema))
		if compileErr != nil {
			compileErr = &SchemaLoadError{Path: "resume.schema.json", Message: "invalid schema", Cause: compileErr}
		}
	})
	return compiledResume, compileErr
}

// ValidateResumeJSON validates a resume document against the embedded resume schema.
func ValidateResumeJSON(jsonContent []byte) error {
	schema, err := resumeValidator()
	if err != nil {
		return err
	}
	return check(schema, gojsonschema.NewBytesLoader(jsonContent))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{Path: "(string schema)", Message: "schema validation failed during load", Cause: err}
	}
	return check(schema, gojsonschema.NewStringLoader(jsonContent))
}

func check(schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return &SchemaLoadError{Path: "(document)", Message: "document could not be decoded", Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return validationErr
}
