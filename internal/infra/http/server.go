// Package http is the thin HTTP ingress: inbound chat webhook, job status
// changes, match recording, payload validation and operational endpoints.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/infra/security"
	"whatsapp-recruiting-funnel/internal/payload"
	"whatsapp-recruiting-funnel/internal/usecase"
)

// Limiter is a per-key fixed window limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TokenParser verifies interview link tokens.
type TokenParser interface {
	Parse(token string) (*security.InterviewClaims, error)
}

type Deps struct {
	Conversations usecase.ConversationUseCase
	Jobs          usecase.JobUseCase
	Registry      *payload.Registry
	Limiter       Limiter
	Tokens        TokenParser
	TypingSpeed   float64
	InboundLimit  int
	InboundWindow time.Duration
	Dev           bool
}

type Server struct {
	deps   Deps
	router chi.Router
	srv    *http.Server
	log    *zerolog.Logger
}

func NewServer(addr string, deps Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	s := &Server{deps: deps, log: &l}
	s.router = s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID, Recover(s.log), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Timeout(10 * time.Second))
		r.Post("/webhooks/whatsapp", s.handleInbound)
		r.Post("/conversations/{id}/matches", s.handleMatch)
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Patch("/jobs/{id}/status", s.handleJobStatus)
		r.Post("/payloads/validate", s.handleValidatePayload)
		r.Get("/interviews/{applicationId}", s.handleInterview)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
