package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

//go:embed schema.sql
var schemaSQL string

// Ensure interface compliance
var _ repository.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps every collection in one JSONB table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// Migrate creates the documents table if needed.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate documents: %w", err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	var b []byte
	switch x := v.(type) {
	case json.RawMessage:
		b = x
	case []byte:
		b = x
	default:
		var err error
		if b, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil || probe == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", domain.ErrInvalidArgument)
	}
	return b, nil
}

func (s *DocumentStore) execSQL(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, sql, args...)
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	const sql = `
SELECT data
  FROM documents
 WHERE collection = $1 AND id = $2;
`
	var data []byte
	if err := s.pool.QueryRow(ctx, sql, collection, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &repository.Document{Collection: collection, ID: id, Data: data}, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data any) error {
	b, err := encode(data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	const sql = `
INSERT INTO documents (collection, id, data)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE
  SET data       = EXCLUDED.data,
      updated_at = now();
`
	if _, err := s.execSQL(ctx, sql, collection, id, string(b)); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch any) error {
	b, err := encode(patch)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	const sql = `
UPDATE documents
   SET data       = data || $3::jsonb,
       updated_at = now()
 WHERE collection = $1 AND id = $2;
`
	tag, err := s.execSQL(ctx, sql, collection, id, string(b))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Query(ctx context.Context, collection string, filters ...repository.Filter) ([]*repository.Document, error) {
	sql, args, err := buildQuery(collection, filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []*repository.Document
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &repository.Document{Collection: collection, ID: id, Data: data})
	}
	return out, rows.Err()
}

// buildQuery turns filters into JSONB containment checks. != requires the
// field to be present.
func buildQuery(collection string, filters []repository.Filter) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")
	args := []interface{}{collection}
	for _, f := range filters {
		probe, err := json.Marshal(map[string]any{f.Field: f.Value})
		if err != nil {
			return "", nil, fmt.Errorf("%w: filter %s: %v", domain.ErrInvalidArgument, f.Field, err)
		}
		switch f.Op {
		case repository.OpEqual:
			args = append(args, string(probe))
			fmt.Fprintf(&sb, " AND data @> $%d::jsonb", len(args))
		case repository.OpNotEqual:
			args = append(args, f.Field, string(probe))
			fmt.Fprintf(&sb, " AND jsonb_exists(data, $%d) AND NOT data @> $%d::jsonb", len(args)-1, len(args))
		default:
			return "", nil, fmt.Errorf("%w: unsupported filter op %q", domain.ErrInvalidArgument, f.Op)
		}
	}
	sb.WriteString(" ORDER BY id;")
	return sb.String(), args, nil
}
