package usecase

import (
	"errors"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
)

// finish logs and counts a task result and decides what the queue sees.
// Missing entities and precondition mismatches end the task successfully.
func finish(log *zerolog.Logger, task string, err error) error {
	switch {
	case err == nil:
		metrics.IncFunnelTask(task, "done")
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrPreconditionFailed):
		metrics.IncFunnelTask(task, "skipped")
		log.Warn().Err(err).Str("task", task).Msg("task skipped")
		return nil
	case !domain.IsRetryable(err):
		metrics.IncFunnelTask(task, "invalid")
		log.Error().Err(err).Str("task", task).Msg("task input rejected")
		return err
	default:
		metrics.IncFunnelTask(task, "failed")
		log.Error().Err(err).Str("task", task).Msg("task failed")
		return err
	}
}

func notFound(what, id string) error {
	return &notFoundError{what: what, id: id}
}

type notFoundError struct{ what, id string }

func (e *notFoundError) Error() string        { return e.what + " " + e.id + " not found" }
func (e *notFoundError) Is(target error) bool { return target == domain.ErrNotFound }
