// Package gateway exposes the chat service over HTTP: a small JSON API plus
// an embedded single-page client.
package gateway

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wayfarerlabs/tripmind/agent/contract"
	"github.com/wayfarerlabs/tripmind/analytics"
)

//go:embed static
var staticFiles embed.FS

// Config is decoded from the TRIPMIND_GATEWAY_* environment.
type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `split_words:"true" default:"120s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// ChatService is the session-facing surface the gateway needs.
type ChatService interface {
	Chat(ctx context.Context, userID, message string) (string, error)
	Clear(userID string)
	History(userID string) []contract.Message
}

// StatsSource reports cumulative per-tool usage.
type StatsSource interface {
	AllStats(ctx context.Context) (map[string]analytics.Stats, error)
}

type Server struct {
	cfg    Config
	chat   ChatService
	stats  StatsSource
	router *mux.Router
}

func NewServer(cfg Config, chat ChatService, stats StatsSource) *Server {
	s := &Server{cfg: cfg, chat: chat, stats: stats}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware, recoveryMiddleware)

	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/api/history/{userId}", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
	return r
}

// Handler returns the configured router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.Addr).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	log.Info().Msg("gateway shutting down")
	return srv.Shutdown(shutdownCtx)
}
