// Package tasks carries funnel tasks over asynq. Enqueuing is keyed by a
// digest of the task name and data, so a task that is already pending or
// scheduled is not scheduled again.
package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

var _ adapter.TaskQueue = (*Queue)(nil)

const defaultQueue = "default"

// Enqueuer is the part of *asynq.Client the queue uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Queue struct {
	client   Enqueuer
	maxRetry int
	timeout  time.Duration
	log      *zerolog.Logger
	now      func() time.Time
}

func NewQueue(client Enqueuer, cfg config.AsynqConfig, logger *zerolog.Logger) *Queue {
	l := logger.With().Str("component", "TaskQueue").Logger()
	return &Queue{client: client, maxRetry: cfg.MaxRetry, timeout: cfg.Timeout, log: &l, now: time.Now}
}

// RedisOpt maps the redis config section to the asynq connection options.
func RedisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.URL, Password: cfg.Password, DB: cfg.DB}
}

// TaskID is the deterministic id of a task: hex sha256 over name and data.
func TaskID(name string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueueFor routes a task by the prefix before the first colon.
func QueueFor(name string) string {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	return defaultQueue
}

func (q *Queue) Enqueue(ctx context.Context, name string, data any, at time.Time) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s data: %w", name, err)
	}
	id := TaskID(name, b)
	opts := []asynq.Option{
		asynq.TaskID(id),
		asynq.Queue(QueueFor(name)),
	}
	if q.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(q.maxRetry))
	}
	if q.timeout > 0 {
		opts = append(opts, asynq.Timeout(q.timeout))
	}
	if at.After(q.now()) {
		opts = append(opts, asynq.ProcessAt(at))
	}

	_, err = q.client.EnqueueContext(ctx, asynq.NewTask(name, b), opts...)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		q.log.Debug().Str("task", name).Str("task_id", id).Msg("task already scheduled")
		return nil
	case err != nil:
		return fmt.Errorf("enqueue %s: %w", name, err)
	}
	q.log.Debug().Str("task", name).Str("task_id", id).Time("process_at", at).Msg("task scheduled")
	return nil
}
