package server

import (
	"net/http"
)

// handleGetMe returns the caller's user record, creating it on first request.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}

	user, err := s.userService.Me(r.Context(), identity)
	if err != nil {
		s.errorFromErr(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}
