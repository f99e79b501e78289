package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

// Server runs registered task handlers on an asynq worker.
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
	log *zerolog.Logger
}

func NewServer(opt asynq.RedisConnOpt, cfg config.AsynqConfig, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "TaskServer").Logger()
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.Queues,
		Logger:      asynqLogger{log: &l},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			l.Warn().Err(err).Str("task", t.Type()).Int("retried", retried).Int("max_retry", maxRetry).Msg("task attempt failed")
		}),
	})
	return &Server{srv: srv, mux: asynq.NewServeMux(), log: &l}
}

// Register routes the handler's task name to it.
func (s *Server) Register(handlers ...adapter.TaskHandler) {
	for _, h := range handlers {
		s.mux.Handle(h.TaskName(), Handler(h))
		s.log.Info().Str("task", h.TaskName()).Msg("task handler registered")
	}
}

// Run processes tasks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.srv.Start(s.mux); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}
	<-ctx.Done()
	s.srv.Shutdown()
	return nil
}

// Handler adapts a TaskHandler to asynq. Errors the handler marks as not
// retryable are wrapped with asynq.SkipRetry so they go straight to the archive.
func Handler(h adapter.TaskHandler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		id, _ := asynq.GetTaskID(ctx)
		err := h.HandleTask(ctx, adapter.Task{
			Name:          t.Type(),
			ID:            id,
			ScheduledTime: time.Now(),
			Data:          t.Payload(),
		})
		if err != nil && !domain.IsRetryable(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	})
}

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct{ log *zerolog.Logger }

func (a asynqLogger) Debug(args ...interface{}) { a.log.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.log.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.log.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.log.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.log.Fatal().Msg(fmt.Sprint(args...)) }
