package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	annotationerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	annotationhttp "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/transport/http"
)

const maxScrollUploadBytes = 512 << 20

func writeAnnotationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, annotationhttp.ErrorResponse{Code: code, Message: message})
}

func writeAnnotationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, annotationerrors.ErrUnauthenticated):
		writeAnnotationError(w, http.StatusUnauthorized, "unauthenticated", annotationerrors.ErrUnauthenticated.Error())
	case errors.Is(err, annotationerrors.ErrInvalidCredentials):
		writeAnnotationError(w, http.StatusUnauthorized, "invalid_credentials", annotationerrors.ErrInvalidCredentials.Error())
	case errors.Is(err, annotationerrors.ErrForbidden):
		writeAnnotationError(w, http.StatusForbidden, "forbidden", annotationerrors.ErrForbidden.Error())
	case errors.Is(err, annotationerrors.ErrScrollNotFound),
		errors.Is(err, annotationerrors.ErrRegionNotFound),
		errors.Is(err, annotationerrors.ErrImageNotFound):
		writeAnnotationError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, annotationerrors.ErrScrollAlreadyExists):
		writeAnnotationError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, annotationerrors.ErrInvalidScrollID),
		errors.Is(err, annotationerrors.ErrInvalidScrollMetadata),
		errors.Is(err, annotationerrors.ErrInvalidImage),
		errors.Is(err, annotationerrors.ErrInvalidRegionID),
		errors.Is(err, annotationerrors.ErrInvalidCoordinates),
		errors.Is(err, annotationerrors.ErrInvalidTranscription),
		errors.Is(err, annotationerrors.ErrInvalidVoteValue):
		writeAnnotationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, annotationerrors.ErrVoteTransactionTimeout):
		writeAnnotationError(w, http.StatusServiceUnavailable, "vote_timeout", annotationerrors.ErrVoteTransactionTimeout.Error())
	default:
		writeAnnotationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleListScrolls(w http.ResponseWriter, r *http.Request) {
	resp, err := s.annotation.Handler.ListScrollsHandler(r.Context(), principalFrom(r))
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetScroll(w http.ResponseWriter, r *http.Request) {
	resp, err := s.annotation.Handler.GetScrollHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id"))
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateScroll takes a multipart form with a JSON "metadata" field and
// an "image" file part.
func (s *Server) handleCreateScroll(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r)
	if !principal.Authenticated {
		writeAnnotationDomainError(w, annotationerrors.ErrUnauthenticated)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxScrollUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_multipart", "request must be multipart/form-data with metadata and image")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	var req annotationhttp.ScrollMetadataRequest
	if err := json.Unmarshal([]byte(r.FormValue("metadata")), &req); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_json", "metadata must be valid JSON")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeAnnotationDomainError(w, annotationerrors.ErrInvalidImage)
		return
	}
	defer file.Close()

	resp, err := s.annotation.Handler.CreateScrollHandler(
		r.Context(),
		principal,
		req,
		path.Ext(header.Filename),
		file,
	)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateScroll(w http.ResponseWriter, r *http.Request) {
	var req annotationhttp.ScrollMetadataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAnnotationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.annotation.Handler.UpdateScrollHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id"), req)
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteScroll(w http.ResponseWriter, r *http.Request) {
	if err := s.annotation.Handler.DeleteScrollHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id")); err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScrollImage(w http.ResponseWriter, r *http.Request) {
	image, err := s.annotation.Handler.ScrollImageHandler(r.Context(), principalFrom(r), r.PathValue("scroll_id"))
	if err != nil {
		writeAnnotationDomainError(w, err)
		return
	}
	defer image.Content.Close()

	w.Header().Set("Content-Type", image.ContentType)
	w.Header().Set("Content-Disposition", "inline; filename=\""+strings.ReplaceAll(image.Key, "\"", "")+"\"")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, image.Content); err != nil {
		s.logger.Warn("scroll image stream interrupted",
			"event", "http_scroll_image_stream_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"scroll_id", r.PathValue("scroll_id"),
			"error", err.Error(),
		)
	}
}
