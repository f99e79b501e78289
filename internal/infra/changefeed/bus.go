package changefeed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/worker"
)

var _ adapter.ChangePublisher = (*Bus)(nil)

// Bus delivers change events to in-process subscribers on a worker pool.
// Publishing blocks while the pool queue is full.
type Bus struct {
	mu       sync.RWMutex
	handlers []adapter.ChangeHandler
	pool     *worker.Pool
	log      *zerolog.Logger
}

func NewBus(pool *worker.Pool, logger *zerolog.Logger) *Bus {
	l := logger.With().Str("component", "ChangeBus").Logger()
	return &Bus{pool: pool, log: &l}
}

func (b *Bus) Subscribe(h adapter.ChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, ev model.ChangeEvent) error {
	b.mu.RLock()
	handlers := append([]adapter.ChangeHandler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h := h
		err := b.pool.SubmitWait(ctx, func(workerCtx context.Context) error {
			if err := h(workerCtx, ev); err != nil {
				b.log.Error().Err(err).
					Str("collection", ev.Collection).
					Str("doc_id", ev.DocID).
					Str("kind", string(ev.Kind)).
					Msg("change handler failed")
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
