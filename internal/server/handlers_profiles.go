package server

import (
	"net/http"
	"time"

	"github.com/jonathan/resume-forge/internal/types"
)

// handleListProfiles lists the caller's profiles, most recently updated first.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	profiles, err := s.store.ListProfiles(r.Context(), identity.UserID)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if profiles == nil {
		profiles = []types.Profile{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}

// handleGetProfile returns one of the caller's profiles.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	profile, err := s.store.GetProfile(r.Context(), identity.UserID, id)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if profile == nil {
		s.errorFromErr(w, r, &ErrNotFound{Resource: "profile", ID: id.String()})
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleSaveProfile creates or replaces a profile. Writes resolve last-write-wins on
// updated_at: a write older than the stored profile is rejected with 409.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	var req types.SaveProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	var updatedAt time.Time
	if req.UpdatedAt != "" {
		updatedAt, err = time.Parse(time.RFC3339, req.UpdatedAt)
		if err != nil {
			s.errorFromErr(w, r, &ErrValidation{Field: "updated_at", Message: "must be an RFC 3339 timestamp"})
			return
		}
	}

	saved, err := s.store.SaveProfile(r.Context(), &types.Profile{
		ID:        id,
		UserID:    identity.UserID,
		Name:      req.Name,
		Resume:    *req.Resume,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, saved)
}

// handleDeleteProfile deletes one of the caller's profiles.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}

	if err := s.store.DeleteProfile(r.Context(), identity.UserID, id); err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
