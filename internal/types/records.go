//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// Plan keys for payment usage.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Generation statuses.
const (
	GenerationPending   = "pending"
	GenerationCompleted = "completed"
	GenerationFailed    = "failed"
)

// User is the persisted account record. ID is the identity provider's user id.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	PlanKey          string    `json:"plan_key"`
	GenerationsUsed  int       `json:"generations_used"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Profile is a named resume a user keeps between generations.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Resume    Resume    `json:"resume"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewerThan reports whether p should replace other under last-write-wins.
// Equal timestamps keep the stored record.
func (p *Profile) NewerThan(other *Profile) bool {
	if other == nil {
		return true
	}
	return p.UpdatedAt.After(other.UpdatedAt)
}

// Template is a stored template definition. Source holds the YAML or JSON text.
// UserID is empty for built-in templates.
type Template struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Generation records one resume generation. The template and resume are stored as resolved
// snapshots, so later edits to either never change a past generation.
type Generation struct {
	ID             uuid.UUID  `json:"id"`
	UserID         string     `json:"user_id"`
	ProfileID      *uuid.UUID `json:"profile_id,omitempty"`
	TemplateName   string     `json:"template_name"`
	TemplateSource string     `json:"template_source"`
	JobDescription string     `json:"job_description,omitempty"`
	Resume         Resume     `json:"resume"`
	Document       string     `json:"document,omitempty"`
	PDFKey         string     `json:"pdf_key,omitempty"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
