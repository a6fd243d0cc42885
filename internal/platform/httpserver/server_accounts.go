package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	accounterrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	accounthttp "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/transport/http"
)

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{Code: code, Message: message})
}

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrUnauthenticated):
		writeAccountError(w, http.StatusUnauthorized, "unauthenticated", accounterrors.ErrUnauthenticated.Error())
	case errors.Is(err, accounterrors.ErrInvalidCredentials):
		writeAccountError(w, http.StatusUnauthorized, "invalid_credentials", accounterrors.ErrInvalidCredentials.Error())
	case errors.Is(err, accounterrors.ErrForbidden):
		writeAccountError(w, http.StatusForbidden, "forbidden", accounterrors.ErrForbidden.Error())
	case errors.Is(err, accounterrors.ErrUserNotFound):
		writeAccountError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, accounterrors.ErrUsernameTaken),
		errors.Is(err, accounterrors.ErrRootExists):
		writeAccountError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidUsername),
		errors.Is(err, accounterrors.ErrInvalidPassword),
		errors.Is(err, accounterrors.ErrInvalidTier),
		errors.Is(err, accounterrors.ErrInvalidPageIndex):
		writeAccountError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+resp.Token)
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+resp.Token)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	index := 0
	if raw := r.URL.Query().Get("index"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeAccountError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
			return
		}
		index = parsed
	}
	resp, err := s.accounts.Handler.ListUsersHandler(r.Context(), principalFrom(r), index)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.accounts.Handler.GetUserHandler(r.Context(), principalFrom(r), r.PathValue("username"))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.UpdateUserHandler(r.Context(), principalFrom(r), r.PathValue("username"), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Handler.DeleteUserHandler(r.Context(), principalFrom(r), r.PathValue("username")); err != nil {
		writeAccountDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePermissions(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.ChangePermissionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.accounts.Handler.ChangePermissionsHandler(r.Context(), principalFrom(r), r.PathValue("username"), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
