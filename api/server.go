// Package api exposes the warehouse agent over HTTP.
//
// Endpoints:
//
//	POST /agent/chat  →  run one agent invocation
//	GET  /health      →  liveness probe
//	GET  /ready       →  readiness probe (pings the database)
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Addr            string        `default:"127.0.0.1:8080"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

const (
	// readHeaderTimeout bounds header reads to keep slow clients from
	// pinning connections.
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second

	// writeTimeout must cover a full agent invocation, which can chain
	// several model round-trips.
	writeTimeout = 3 * time.Minute
	idleTimeout  = 120 * time.Second
)

// Server owns the mux and the registered handlers.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	health *HealthHandler
	chat   *ChatHandler
}

func NewServer(cfg Config, agent Agent, readiness Pinger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		cfg:    cfg,
		mux:    mux,
		health: NewHealthHandler(readiness),
		chat:   NewChatHandler(agent),
	}
	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	return s
}

// Handler returns the mux wrapped in the middleware chain,
// recovery outermost.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
