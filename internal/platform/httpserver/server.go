package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	account "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service"
	annotation "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation"
	_ "github.com/MF-patino/HerculaneumTranscriptor/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

const maxJSONBodyBytes = 1 << 20

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	httpServer *http.Server
	accounts   account.Module
	annotation annotation.Module
}

func New(
	accounts account.Module,
	annotationModule annotation.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		accounts:   accounts,
		annotation: annotationModule,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.route("POST /users/register", s.handleRegister)
	s.route("POST /users/login", s.handleLogin)
	s.route("GET /users", s.handleListUsers)
	s.route("GET /users/{username}", s.handleGetUser)
	s.route("PUT /users/{username}", s.handleUpdateUser)
	s.route("DELETE /users/{username}", s.handleDeleteUser)
	s.route("PUT /permissions/{username}", s.handleChangePermissions)

	s.route("GET /scrolls", s.handleListScrolls)
	s.route("POST /scrolls", s.handleCreateScroll)
	s.route("GET /scrolls/{scroll_id}", s.handleGetScroll)
	s.route("PUT /scrolls/{scroll_id}", s.handleUpdateScroll)
	s.route("DELETE /scrolls/{scroll_id}", s.handleDeleteScroll)
	s.route("GET /scrolls/{scroll_id}/image", s.handleScrollImage)

	s.route("GET /scrolls/{scroll_id}/regions", s.handleSyncRegions)
	s.route("POST /scrolls/{scroll_id}/regions", s.handleCreateRegion)
	s.route("PUT /scrolls/{scroll_id}/regions/{region_id}", s.handleUpdateRegion)
	s.route("DELETE /scrolls/{scroll_id}/regions/{region_id}", s.handleDeleteRegion)
	s.route("POST /scrolls/{scroll_id}/regions/{region_id}/vote", s.handleCastVote)
	s.route("GET /scrolls/{scroll_id}/regions/{region_id}/votes", s.handleListVotes)
	s.route("GET /scrolls/{scroll_id}/regions/{region_id}/permissions", s.handleRegionPermission)
}

// route registers an API handler behind the authentication gateway.
func (s *Server) route(pattern string, handler http.HandlerFunc) {
	s.mux.Handle(pattern, s.authenticate(handler))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
