// Package docrepo implements the typed repositories on top of a DocumentStore.
package docrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

// NewID returns a time-ordered unique id.
func NewID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

func get[T any](ctx context.Context, store repository.DocumentStore, collection, id string) (*T, error) {
	d, err := store.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return decode[T](d)
}

func decode[T any](d *repository.Document) (*T, error) {
	var v T
	if err := json.Unmarshal(d.Data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", domain.ErrReadDatabaseRow, d.Collection, d.ID, err)
	}
	return &v, nil
}

func query[T any](ctx context.Context, store repository.DocumentStore, collection string, filters ...repository.Filter) ([]*T, error) {
	docs, err := store.Query(ctx, collection, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
