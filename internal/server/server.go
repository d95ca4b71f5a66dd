// Package server provides the local preview server: a read-only HTTP view
// of a KAOS model file with validation, logic export and evaluation, plus a
// websocket channel announcing when the file is reloaded.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrypster/kaosdraw/internal/config"
	"github.com/scrypster/kaosdraw/internal/workspace"
)

// Server serves one model source.
type Server struct {
	cfg     config.ServerConfig
	source  *ModelSource
	hub     *WebSocketHub
	limiter *RateLimiter
	logger  zerolog.Logger
}

// New creates a server for source.
func New(cfg config.ServerConfig, source *ModelSource, logger zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		source:  source,
		hub:     NewWebSocketHub(allowedOrigins(cfg), logger),
		limiter: NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:  logger,
	}
}

// allowedOrigins returns the websocket origin patterns for the configured
// port on loopback names.
func allowedOrigins(cfg config.ServerConfig) []string {
	port := strconv.Itoa(cfg.Port)
	origins := []string{"localhost:" + port, "127.0.0.1:" + port}
	if cfg.Host != "" && cfg.Host != "localhost" && cfg.Host != "127.0.0.1" && cfg.Host != "0.0.0.0" {
		origins = append(origins, net.JoinHostPort(cfg.Host, port))
	}
	return origins
}

// Hub returns the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.hub
}

// Handler returns the complete HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/model", s.handleModel)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /api/logic", s.handleLogic)
	mux.HandleFunc("GET /api/logic.xml", s.handleLogicXML)
	mux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	mux.Handle("GET /ws", s.hub)

	// Rate limiting, then security headers, then request logging
	handler := rateLimitMiddleware(mux, s.limiter)
	handler = securityHeadersMiddleware(handler)
	return loggingMiddleware(handler, s.logger)
}

// HandleModelChange reloads the model file and tells websocket clients.
// It is the file watcher's callback.
func (s *Server) HandleModelChange(path string) {
	msg := ReloadMessage{Type: MsgModelReloaded}
	if err := s.source.Reload(); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Server: reload failed")
		msg.Type = MsgReloadFailed
		msg.Error = err.Error()
		s.hub.Broadcast(msg)
		return
	}

	_ = s.source.View(func(ws *workspace.Workspace) error {
		m := ws.Model()
		msg.Model = m.Identifier
		msg.Items = m.Len()
		msg.Violations = len(ws.Validate())
		return nil
	})
	s.logger.Info().
		Str("model", msg.Model).
		Int("items", msg.Items).
		Int("violations", msg.Violations).
		Msg("Server: model reloaded")
	s.hub.Broadcast(msg)
}

// Start listens on the configured address and serves until ctx is done.
// It returns the actual address being listened on, which differs from the
// configured one when port 0 is used.
func (s *Server) Start(ctx context.Context) (string, error) {
	addr := s.cfg.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.hub.Run()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Server: serve failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("Server: shutdown failed")
		}
		s.hub.Stop()
	}()

	actual := listener.Addr().String()
	s.logger.Info().Str("addr", actual).Msg("Server: listening")
	return actual, nil
}
