package server

import (
	"log/slog"
	"net/http"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/handlers"
	"superstore-analytics/internal/services"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	apiHandlers  *handlers.APIHandlers
	sseHandlers  *handlers.SSEHandlers
	pageHandlers *handlers.PageHandlers
}

func NewServer(analytics *services.Analytics, formatter *format.Formatter, logger *slog.Logger) *Server {
	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		apiHandlers:  handlers.NewAPIHandlers(analytics, formatter, logger),
		sseHandlers:  handlers.NewSSEHandlers(analytics, formatter, logger),
		pageHandlers: handlers.NewPageHandlers(analytics, formatter, logger),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API
	s.mux.HandleFunc("GET /api/reports", s.apiHandlers.HandleCatalog)
	s.mux.HandleFunc("GET /api/reports/{name}", s.apiHandlers.HandleReport)

	// Datastar SSE
	s.mux.HandleFunc("GET /sse/reports/{name}", s.sseHandlers.HandleReport)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
