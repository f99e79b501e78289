// Package memory is an in-process DocumentStore for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

var _ repository.DocumentStore = (*DocumentStore)(nil)

type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]any
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]map[string]map[string]any)}
}

func toObject(v any) (map[string]any, error) {
	var raw []byte
	switch x := v.(type) {
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", domain.ErrInvalidArgument)
	}
	return obj, nil
}

func (s *DocumentStore) Get(_ context.Context, collection, id string) (*repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return toDocument(collection, id, obj)
}

func (s *DocumentStore) Set(_ context.Context, collection, id string, data any) error {
	obj, err := toObject(data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]any)
	}
	s.docs[collection][id] = obj
	return nil
}

func (s *DocumentStore) Update(_ context.Context, collection, id string, patch any) error {
	p, err := toObject(patch)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[collection][id]
	if !ok {
		return domain.ErrNotFound
	}
	merged := make(map[string]any, len(cur)+len(p))
	for k, v := range cur {
		merged[k] = v
	}
	for k, v := range p {
		merged[k] = v
	}
	s.docs[collection][id] = merged
	return nil
}

// Query returns matching documents ordered by id. A != filter does not match
// documents that lack the field.
func (s *DocumentStore) Query(_ context.Context, collection string, filters ...repository.Filter) ([]*repository.Document, error) {
	want := make([]any, len(filters))
	for i, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("query %s: filter %s: %w", collection, f.Field, err)
		}
		want[i] = v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs[collection]))
	for id := range s.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*repository.Document
	for _, id := range ids {
		obj := s.docs[collection][id]
		if !matches(obj, filters, want) {
			continue
		}
		d, err := toDocument(collection, id, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func matches(obj map[string]any, filters []repository.Filter, want []any) bool {
	for i, f := range filters {
		got, present := obj[f.Field]
		switch f.Op {
		case repository.OpEqual:
			if !present || !reflect.DeepEqual(got, want[i]) {
				return false
			}
		case repository.OpNotEqual:
			if !present || reflect.DeepEqual(got, want[i]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// normalize gives a filter value the shape encoding/json produces for stored data.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	return out, json.Unmarshal(b, &out)
}

func toDocument(collection, id string, obj map[string]any) (*repository.Document, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return &repository.Document{Collection: collection, ID: id, Data: b}, nil
}
