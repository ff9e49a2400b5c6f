package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-forge/internal/pipeline"
	"github.com/jonathan/resume-forge/internal/server/middleware"
	"github.com/jonathan/resume-forge/internal/storage"
	"github.com/jonathan/resume-forge/internal/types"
)

// GenerationResponse is one generation outcome. Error is set when the generation failed after
// its record was created.
type GenerationResponse struct {
	Generation *types.Generation `json:"generation"`
	Error      string            `json:"error,omitempty"`
}

// BatchResponse reports a generation per requested template, in request order.
type BatchResponse struct {
	Results   []GenerationResponse `json:"results"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

// generationPlan is a validated generation request ready for the pipeline.
type generationPlan struct {
	generator *pipeline.Generator
	request   pipeline.Request
	templates []pipeline.TemplateRef
}

// handleCreateGeneration runs a generation per requested template.
func (s *Server) handleCreateGeneration(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	plan, err := s.planGeneration(r, identity)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	if len(plan.templates) == 1 {
		req := plan.request
		req.Template = plan.templates[0]
		result, err := plan.generator.Run(r.Context(), req)
		if err != nil {
			if result == nil {
				s.errorFromErr(w, r, err)
				return
			}
			s.jsonResponse(w, HTTPStatus(err), GenerationResponse{Generation: result.Generation, Error: err.Error()})
			return
		}
		s.jsonResponse(w, http.StatusCreated, GenerationResponse{Generation: result.Generation})
		return
	}

	results, err := plan.generator.RunBatch(r.Context(), plan.request, plan.templates)
	if err != nil && results == nil {
		s.errorFromErr(w, r, err)
		return
	}
	resp := BatchResponse{Results: make([]GenerationResponse, len(results))}
	var firstErr error
	for i, res := range results {
		item := GenerationResponse{}
		if res.Result != nil {
			item.Generation = res.Result.Generation
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
			resp.Failed++
			if firstErr == nil {
				firstErr = res.Err
			}
		} else {
			resp.Succeeded++
		}
		resp.Results[i] = item
	}

	status := http.StatusCreated
	switch {
	case resp.Failed > 0 && resp.Succeeded > 0:
		status = http.StatusMultiStatus
	case resp.Failed > 0:
		status = HTTPStatus(firstErr)
	}
	s.jsonResponse(w, status, resp)
}

// handleCreateGenerationStream runs a single-template generation and streams its progress as
// Server-Sent Events: "progress" per stage, then "complete" or "error".
func (s *Server) handleCreateGenerationStream(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	plan, err := s.planGeneration(r, identity)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if len(plan.templates) != 1 {
		s.errorFromErr(w, r, &ErrValidation{Field: "template_ids", Message: "streaming supports a single template"})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	plan.generator.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, event); err != nil {
			s.logger.WithError(err).Debug("failed to write progress event")
		}
	}

	req := plan.request
	req.Template = plan.templates[0]
	result, err := plan.generator.Run(r.Context(), req)
	if err != nil {
		status, message := s.publicError(r, err)
		streamErr := StreamError{Status: status, Error: message}
		if result != nil {
			streamErr.Generation = result.Generation
		}
		sse.WriteError(streamErr)
		return
	}
	sse.WriteComplete(GenerationResponse{Generation: result.Generation})
}

// planGeneration validates a generation request and resolves its resume, templates and job
// description. The returned generator is a per-request copy.
func (s *Server) planGeneration(r *http.Request, identity middleware.Identity) (*generationPlan, error) {
	var body types.GenerationRequest
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	ctx := r.Context()

	req := pipeline.Request{UserID: identity.UserID, Resume: body.Resume}
	if body.Resume == nil {
		profileID := uuid.MustParse(body.ProfileID)
		profile, err := s.store.GetProfile(ctx, identity.UserID, profileID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, &ErrNotFound{Resource: "profile", ID: body.ProfileID}
		}
		req.Resume = &profile.Resume
		req.ProfileID = &profileID
	}

	templates, err := s.resolveTemplates(ctx, identity.UserID, body)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, &ErrValidation{Field: "template_ids", Message: "at least one template is required"}
	}

	generator := *s.generator
	generator.OnProgress = nil
	if body.Tailor {
		if generator.Tailor == nil {
			if s.llm == nil {
				return nil, &ErrUnavailable{Feature: "resume tailoring"}
			}
			generator.Tailor = pipeline.LLMTailor{Client: s.llm}
		}
		if body.JobDescription == "" && body.JobURL == "" {
			return nil, &ErrValidation{Field: "job_description", Message: "required when tailor is set"}
		}
		posting, err := s.ingester.JobDescription(ctx, body.JobDescription, body.JobURL)
		if err != nil {
			return nil, err
		}
		req.JobDescription = posting.Text
	} else {
		generator.Tailor = nil
		req.JobDescription = body.JobDescription
	}

	return &generationPlan{generator: &generator, request: req, templates: templates}, nil
}

// resolveTemplates loads template_id followed by template_ids, skipping duplicates.
func (s *Server) resolveTemplates(ctx context.Context, userID string, body types.GenerationRequest) ([]pipeline.TemplateRef, error) {
	ids := body.TemplateIDs
	if body.TemplateID != "" {
		ids = append([]string{body.TemplateID}, ids...)
	}

	seen := make(map[string]bool, len(ids))
	refs := make([]pipeline.TemplateRef, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		tmpl, err := s.loadTemplate(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, pipeline.TemplateRef{Name: tmpl.Name, Source: tmpl.Source})
	}
	return refs, nil
}

// handleListGenerations lists the caller's generations, newest first.
func (s *Server) handleListGenerations(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorFromErr(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	generations, err := s.store.ListGenerations(r.Context(), identity.UserID, limit)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if generations == nil {
		generations = []types.Generation{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"generations": generations, "count": len(generations)})
}

// handleGetGeneration returns one of the caller's generations.
func (s *Server) handleGetGeneration(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.findGeneration(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, gen)
}

// handleGetGenerationPDF streams the stored PDF of a completed generation.
func (s *Server) handleGetGenerationPDF(w http.ResponseWriter, r *http.Request) {
	gen, ok := s.findGeneration(w, r)
	if !ok {
		return
	}
	if s.objects == nil {
		s.errorFromErr(w, r, &ErrUnavailable{Feature: "PDF storage"})
		return
	}
	if gen.PDFKey == "" {
		s.errorFromErr(w, r, &ErrNotFound{Resource: "PDF for generation", ID: gen.ID.String()})
		return
	}

	pdf, err := s.objects.Get(r.Context(), gen.PDFKey)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	w.Header().Set("Content-Type", storage.PDFContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="resume.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.WithError(err).Debug("client went away during PDF download")
	}
}

// handleDeleteGeneration deletes a generation and its stored PDF.
func (s *Server) handleDeleteGeneration(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	pdfKey, err := s.store.DeleteGeneration(r.Context(), identity.UserID, id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	if pdfKey != "" && s.objects != nil {
		if err := s.objects.Delete(r.Context(), pdfKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			// the row is already gone; keep the 204
			s.logger.WithError(err).WithField("key", pdfKey).Warn("failed to delete generation PDF")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) findGeneration(w http.ResponseWriter, r *http.Request) (*types.Generation, bool) {
	identity, ok := s.identity(w, r)
	if !ok {
		return nil, false
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return nil, false
	}

	gen, err := s.store.GetGeneration(r.Context(), identity.UserID, id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return nil, false
	}
	if gen == nil {
		s.errorFromErr(w, r, &ErrNotFound{Resource: "generation", ID: id.String()})
		return nil, false
	}
	return gen, true
}
