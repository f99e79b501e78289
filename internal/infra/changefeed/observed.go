// Package changefeed captures document writes as change events and carries
// them to the observer, in process or over Kafka.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

var _ repository.DocumentStore = (*ObservedStore)(nil)

// ObservedStore publishes a ChangeEvent after every successful Set or Update
// on a watched collection. The before and after snapshots are read around the
// write and are not atomic with it.
type ObservedStore struct {
	inner   repository.DocumentStore
	pub     adapter.ChangePublisher
	watched map[string]bool
	log     *zerolog.Logger
	now     func() time.Time
}

// NewObservedStore watches the given collections, or every collection when none is named.
func NewObservedStore(inner repository.DocumentStore, pub adapter.ChangePublisher, logger *zerolog.Logger, collections ...string) *ObservedStore {
	l := logger.With().Str("component", "ObservedStore").Logger()
	s := &ObservedStore{inner: inner, pub: pub, log: &l, now: time.Now}
	if len(collections) > 0 {
		s.watched = make(map[string]bool, len(collections))
		for _, c := range collections {
			s.watched[c] = true
		}
	}
	return s
}

func (s *ObservedStore) watches(collection string) bool {
	return s.watched == nil || s.watched[collection]
}

func (s *ObservedStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	return s.inner.Get(ctx, collection, id)
}

func (s *ObservedStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]*repository.Document, error) {
	return s.inner.Query(ctx, collection, filters...)
}

func (s *ObservedStore) Set(ctx context.Context, collection, id string, data any) error {
	return s.observe(ctx, collection, id, func() error { return s.inner.Set(ctx, collection, id, data) })
}

func (s *ObservedStore) Update(ctx context.Context, collection, id string, patch any) error {
	return s.observe(ctx, collection, id, func() error { return s.inner.Update(ctx, collection, id, patch) })
}

func (s *ObservedStore) observe(ctx context.Context, collection, id string, write func() error) error {
	if !s.watches(collection) {
		return write()
	}
	before, err := s.snapshot(ctx, collection, id)
	if err != nil {
		return err
	}
	if err := write(); err != nil {
		return err
	}
	after, err := s.snapshot(ctx, collection, id)
	if err != nil {
		return err
	}
	ev := model.ChangeEvent{
		ID:         uuid.NewString(),
		Collection: collection,
		DocID:      id,
		Kind:       model.KindOf(before, after),
		Before:     before,
		After:      after,
		At:         s.now(),
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Str("doc_id", id).Msg("change not published")
		return fmt.Errorf("publish change %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *ObservedStore) snapshot(ctx context.Context, collection, id string) (json.RawMessage, error) {
	doc, err := s.inner.Get(ctx, collection, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	return doc.Data, nil
}
