package repository

import (
	"context"
	"encoding/json"
)

type FilterOp string

const (
	OpEqual    FilterOp = "=="
	OpNotEqual FilterOp = "!="
)

// Filter is a single-field comparison against a top-level document field.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

func Eq(field string, value any) Filter  { return Filter{Field: field, Op: OpEqual, Value: value} }
func Neq(field string, value any) Filter { return Filter{Field: field, Op: OpNotEqual, Value: value} }

// Document is a stored JSON object and its identity.
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
}

// DocumentStore is a collection/id keyed JSON store.
//
// Get returns domain.ErrNotFound for a missing document. Update merges the
// top-level keys of patch into the stored object and fails with
// domain.ErrNotFound when the document does not exist. Query ANDs all filters.
// No method is transactional across documents.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, data any) error
	Update(ctx context.Context, collection, id string, patch any) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]*Document, error)
}
