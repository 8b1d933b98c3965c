// Package server exposes the documentation pipeline over HTTP: JSON
// endpoints for generate/refine/accept, an SSE endpoint for streaming
// generation, and the source-host OAuth and repository routes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"docfoundry/internal/github"
	"docfoundry/internal/services"
)

type Server struct {
	httpServer *http.Server
	docs       *services.DocService
	host       *github.Client
	logger     *zap.Logger
}

func New(addr string, docs *services.DocService, host *github.Client, logger *zap.Logger) *Server {
	s := &Server{
		docs:   docs,
		host:   host,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(cors(s.routes()), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate/stream", s.handleGenerateStream)
	mux.HandleFunc("POST /api/docs/refine", s.handleRefine)
	mux.HandleFunc("POST /api/docs/accept", s.handleAccept)
	mux.HandleFunc("GET /api/auth/github", s.handleAuthRedirect)
	mux.HandleFunc("GET /api/auth/github/callback", s.handleAuthCallback)
	mux.HandleFunc("GET /api/github/repos", s.handleListRepos)
	mux.HandleFunc("GET /api/github/repo/{owner}/{repo}/files", s.handleRepoFiles)
	mux.HandleFunc("POST /api/generate/local", s.handleGenerateLocal)
	mux.HandleFunc("GET /api/local/branches", s.handleLocalBranches)
	mux.HandleFunc("GET /api/models", s.handleListModels)
	return mux
}

func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
