package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/foldergen/foldergen/fgen/config"
	"github.com/foldergen/foldergen/fgen/db"
	"github.com/foldergen/foldergen/fgen/generator"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the thin HTTP hosting layer around the generation engine: it
// materializes inputs (scans, uploads, parsed tables), holds them in
// per-client sessions and renders engine results as JSON.
type Server struct {
	addr       string
	logger     *slog.Logger
	cfg        *config.Config
	engine     *generator.Generator
	history    *db.HistoryProvider
	sessions   *SessionStore
	router     *chi.Mux
	httpServer *http.Server
}

// New creates the hosting layer. history may be nil when run persistence is
// disabled.
func New(logger *slog.Logger, cfg *config.Config, history *db.HistoryProvider) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	s := &Server{
		addr:     cfg.Server.Addr,
		logger:   logger,
		cfg:      cfg,
		engine:   generator.New(cfg.Generator.MaxSourceFileBytes),
		history:  history,
		sessions: NewSessionStore(),
		router:   r,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.router.Post("/api/session", s.handleCreateSession)
	s.router.Post("/api/source-folder", s.handleSourceFolder)
	s.router.Post("/api/files", s.handleSelectFiles)
	s.router.Post("/api/upload", s.handleUpload)
	s.router.Post("/api/name-file", s.handleNameFile)
	s.router.Post("/api/name-list", s.handleNameList)
	s.router.Post("/api/spreadsheet", s.handleSpreadsheet)
	s.router.Post("/api/levels", s.handleLevels)
	s.router.Post("/api/output-folder", s.handleOutputFolder)
	s.router.Post("/api/process", s.handleProcess)
	s.router.Get("/api/history", s.handleHistory)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting foldergen server", "addr", s.addr)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("Server stopped")
	return nil
}
