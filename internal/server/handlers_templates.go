package server

import (
	"net/http"

	"github.com/jonathan/resume-forge/internal/rendering"
	"github.com/jonathan/resume-forge/internal/types"
)

// TemplateResponse is a stored template with a summary of its parsed sections.
type TemplateResponse struct {
	types.Template
	Builtin  bool     `json:"builtin"`
	Sections []string `json:"sections,omitempty"`
}

func newTemplateResponse(t *types.Template) TemplateResponse {
	resp := TemplateResponse{Template: *t, Builtin: t.UserID == ""}
	if tmpl, err := rendering.ParseSource(t.Source); err == nil {
		resp.Sections = sectionNames(tmpl)
	}
	return resp
}

func sectionNames(tmpl *rendering.Template) []string {
	names := make([]string, len(tmpl.Sections))
	for i, section := range tmpl.Sections {
		names[i] = string(section.Type())
	}
	return names
}

// handleListTemplates lists built-in templates and the caller's own.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	templates, err := s.store.ListTemplates(r.Context(), identity.UserID)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	resp := make([]TemplateResponse, len(templates))
	for i := range templates {
		resp[i] = newTemplateResponse(&templates[i])
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"templates": resp, "count": len(resp)})
}

// handleCreateTemplate stores a template after checking that it parses.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req types.CreateTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	if _, err := rendering.ParseSource(req.Source); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	stored, err := s.store.CreateTemplate(r.Context(), &types.Template{
		UserID: identity.UserID,
		Name:   req.Name,
		Source: req.Source,
	})
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, newTemplateResponse(stored))
}

// handleGetTemplate returns one template visible to the caller.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	tmpl, err := s.store.GetTemplate(r.Context(), identity.UserID, id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if tmpl == nil {
		s.errorFromErr(w, r, &ErrNotFound{Resource: "template", ID: id.String()})
		return
	}

	s.jsonResponse(w, http.StatusOK, newTemplateResponse(tmpl))
}
