package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/resume-forge/internal/ingestion"
	"github.com/jonathan/resume-forge/internal/rewriting"
	"github.com/jonathan/resume-forge/internal/types"
)

// uploadOverhead leaves room for multipart headers and form fields around the file.
const uploadOverhead = 1 << 20

// TailorResponse carries a tailored resume and where its job description came from.
type TailorResponse struct {
	Resume   *types.Resume `json:"resume"`
	JobURL   string        `json:"job_url,omitempty"`
	Platform string        `json:"platform,omitempty"`
}

// handleParseResume turns an uploaded CV (.pdf, .docx, .txt or .md, form field "file") into a
// structured resume. An optional "job_description" form field guides the extraction.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identity(w, r); !ok {
		return
	}
	if s.llm == nil {
		s.errorFromErr(w, r, &ErrUnavailable{Feature: "resume parsing"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxDocumentBytes+uploadOverhead)
	if err := r.ParseMultipartForm(ingestion.MaxDocumentBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "upload exceeds the document size limit")
			return
		}
		s.errorFromErr(w, r, &ErrValidation{Field: "file", Message: "expected a multipart upload"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorFromErr(w, r, &ErrValidation{Field: "file", Message: "is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	text, err := ingestion.ExtractText(header.Filename, data)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	resume, err := rewriting.ParseResume(r.Context(), s.llm, text, r.FormValue("job_description"))
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, resume)
}

// handleTailorResume rewrites a resume against a job description given as text or a URL.
func (s *Server) handleTailorResume(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.identity(w, r); !ok {
		return
	}
	if s.llm == nil {
		s.errorFromErr(w, r, &ErrUnavailable{Feature: "resume tailoring"})
		return
	}

	var req types.TailorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	posting, err := s.ingester.JobDescription(r.Context(), req.JobDescription, req.JobURL)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	tailored, err := rewriting.TailorResume(r.Context(), s.llm, req.Resume, posting.Text)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, TailorResponse{Resume: tailored, JobURL: posting.URL, Platform: posting.Platform})
}
