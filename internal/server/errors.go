// Package server provides the HTTP REST API for resume generation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-forge/internal/compile"
	"github.com/jonathan/resume-forge/internal/db"
	"github.com/jonathan/resume-forge/internal/fetch"
	"github.com/jonathan/resume-forge/internal/ingestion"
	"github.com/jonathan/resume-forge/internal/rendering"
	"github.com/jonathan/resume-forge/internal/rewriting"
	"github.com/jonathan/resume-forge/internal/storage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnavailable indicates a feature whose backing service is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error. Wrapped errors are
// classified by the innermost recognized kind.
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		validatorEr validator.ValidationErrors
		notFound    *ErrNotFound
		unavailable *ErrUnavailable
		unsupported *rendering.UnsupportedSectionTypeError
		templateErr *rendering.TemplateError
		invented    *rewriting.InventedEntryError
		compileErr  *compile.CompilationError
		parseErr    *rewriting.ParseError
		apiErr      *rewriting.APICallError
		fetchErr    *fetch.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &validatorEr),
		errors.Is(err, rendering.ErrMissingTemplate), errors.Is(err, rendering.ErrMissingResume),
		errors.Is(err, ingestion.ErrNoJobDescription):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrStaleWrite):
		return http.StatusConflict
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &unsupported), errors.As(err, &templateErr), errors.As(err, &invented),
		errors.Is(err, ingestion.ErrEmptyDocument), errors.Is(err, ingestion.ErrEmptyPosting):
		return http.StatusUnprocessableEntity
	case errors.As(err, &compileErr), errors.As(err, &parseErr), errors.As(err, &apiErr),
		errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
