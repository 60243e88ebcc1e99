package remote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storyview/internal/library"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.target.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "PLAYER_STOPPED", "Story is no longer playing")
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(s.cfg.Title, snap))
}

// command runs fn and answers with the resulting state.
func (s *Server) command(fn func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !fn() {
			writeError(w, http.StatusServiceUnavailable, "PLAYER_STOPPED", "Story is no longer playing")
			return
		}
		s.state(w, r)
	}
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Library not available")
		return
	}
	records, err := s.catalog.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list stories")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list stories")
		return
	}
	resp := StoriesResponse{Stories: make([]StorySummary, 0, len(records))}
	for _, rec := range records {
		resp.Stories = append(resp.Stories, newStorySummary(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getStory(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Library not available")
		return
	}
	ref := chi.URLParam(r, "ref")
	rec, err := s.catalog.Resolve(ref)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Story not found")
			return
		}
		s.logger.Error().Err(err).Str("ref", ref).Msg("failed to get story")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get story")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
