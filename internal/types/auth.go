//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RenderRequest asks for the document text of a resume under a template.
// Exactly one of TemplateID and TemplateSource is expected.
type RenderRequest struct {
	Resume         *Resume `json:"resume" validate:"required"`
	TemplateID     string  `json:"template_id,omitempty" validate:"required_without=TemplateSource,omitempty,uuid"`
	TemplateSource string  `json:"template_source,omitempty" validate:"required_without=TemplateID"`
}

// GenerationRequest starts a full generation: optional tailoring, rendering, compilation and storage.
// The resume comes either inline or from a stored profile.
type GenerationRequest struct {
	ProfileID      string   `json:"profile_id,omitempty" validate:"required_without=Resume,omitempty,uuid"`
	Resume         *Resume  `json:"resume,omitempty" validate:"required_without=ProfileID"`
	TemplateID     string   `json:"template_id,omitempty" validate:"required_without_all=TemplateIDs,omitempty,uuid"`
	TemplateIDs    []string `json:"template_ids,omitempty" validate:"omitempty,max=5,dive,uuid"`
	JobDescription string   `json:"job_description,omitempty" validate:"max=20000"`
	JobURL         string   `json:"job_url,omitempty" validate:"omitempty,url"`
	Tailor         bool     `json:"tailor,omitempty"`
}

// TailorRequest rewrites a resume against a job description given as text or as a URL.
type TailorRequest struct {
	Resume         *Resume `json:"resume" validate:"required"`
	JobDescription string  `json:"job_description,omitempty" validate:"required_without=JobURL,max=20000"`
	JobURL         string  `json:"job_url,omitempty" validate:"required_without=JobDescription,omitempty,url"`
}

// CreateTemplateRequest uploads a template definition.
type CreateTemplateRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=120"`
	Source string `json:"source" validate:"required"`
}

// SaveProfileRequest writes a profile. UpdatedAt is the client's write timestamp used for
// last-write-wins resolution; a zero value means "now".
type SaveProfileRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=120"`
	Resume    *Resume `json:"resume" validate:"required"`
	UpdatedAt string  `json:"updated_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Validate validates the RenderRequest using the validator.
func (r *RenderRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the TailorRequest using the validator.
func (r *TailorRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CreateTemplateRequest using the validator.
func (r *CreateTemplateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SaveProfileRequest using the validator.
func (r *SaveProfileRequest) Validate() error {
	return validate.Struct(r)
}
