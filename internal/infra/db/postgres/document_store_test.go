package postgres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

func TestBuildQuery(t *testing.T) {
	t.Parallel()

	t.Run("should build containment filters in order", func(t *testing.T) {
		t.Parallel()

		sql, args, err := buildQuery("applications", []repository.Filter{
			repository.Eq("jobId", "j1"),
			repository.Neq("status", "REJECTED"),
		})

		require.NoError(t, err)
		assert.Equal(t,
			"SELECT id, data FROM documents WHERE collection = $1 AND data @> $2::jsonb AND jsonb_exists(data, $3) AND NOT data @> $4::jsonb ORDER BY id;",
			sql)
		assert.Equal(t, []interface{}{"applications", `{"jobId":"j1"}`, "status", `{"status":"REJECTED"}`}, args)
	})

	t.Run("should reject unknown operators", func(t *testing.T) {
		t.Parallel()
		_, _, err := buildQuery("jobs", []repository.Filter{{Field: "x", Op: ">", Value: 1}})
		assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	})
}

func TestEncode(t *testing.T) {
	t.Parallel()

	b, err := encode(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = encode([]int{1})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))

	_, err = encode(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}
