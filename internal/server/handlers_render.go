package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-forge/internal/rendering"
	"github.com/jonathan/resume-forge/internal/types"
)

// RenderResponse carries the generated document text.
type RenderResponse struct {
	Document string `json:"document"`
}

// handleRender generates a document without compiling or persisting anything.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req types.RenderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	source := req.TemplateSource
	if source == "" {
		stored, err := s.loadTemplate(r.Context(), identity.UserID, req.TemplateID)
		if err != nil {
			s.errorFromErr(w, r, err)
			return
		}
		source = stored.Source
	}

	tmpl, err := rendering.ParseSource(source)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	resume := req.Resume
	if s.escapeValues {
		resume = rendering.EscapeResume(resume)
	}

	document, err := rendering.Generate(tmpl, resume)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, RenderResponse{Document: document})
}

// loadTemplate fetches a template visible to userID by its string ID.
func (s *Server) loadTemplate(ctx context.Context, userID, rawID string) (*types.Template, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, &ErrValidation{Field: "template_id", Message: "must be a UUID"}
	}
	tmpl, err := s.store.GetTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, &ErrNotFound{Resource: "template", ID: rawID}
	}
	return tmpl, nil
}
