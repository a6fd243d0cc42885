package httpserver

import (
	"net/http"
	"time"

	annotationhttp "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
)

// handleSyncRegions serves full loads without "since" and deltas with it.
func (s *Server) handleSyncRegions(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeAnnotationError(w, http.StatusBadRequest, "invalid_since", "since must be an RFC 3339 timestamp")
			return
		}
		since = &parsed
	}
	resp, err := s.annotation.Handler.SyncRegionsHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id"), since)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	var req annotationhttp.RegionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.annotation.Handler.CreateRegionHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id"), req)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateRegion(w http.ResponseWriter, r *http.Request) {
	var req annotationhttp.RegionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.annotation.Handler.UpdateRegionHandler(
		r.Context(),
		principalFrom(r),
		r.PathValue("scroll_id"),
		r.PathValue("region_id"),
		req,
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRegion(w http.ResponseWriter, r *http.Request) {
	err := s.annotation.Handler.DeleteRegionHandler(
		r.Context(),
		principalFrom(r),
		r.PathValue("scroll_id"),
		r.PathValue("region_id"),
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req annotationhttp.VoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.annotation.Handler.CastVoteHandler(
		r.Context(),
		principalFrom(r),
		r.PathValue("scroll_id"),
		r.PathValue("region_id"),
		req,
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.annotation.Handler.ListVotesHandler(
		r.Context(),
		principalFrom(r),
		r.PathValue("scroll_id"),
		r.PathValue("region_id"),
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegionPermission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.annotation.Handler.RegionPermissionHandler(
		r.Context(),
		principalFrom(r),
		r.PathValue("scroll_id"),
		r.PathValue("region_id"),
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
