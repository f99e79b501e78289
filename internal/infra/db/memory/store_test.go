package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
)

func TestDocumentStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("should return not found for missing documents", func(t *testing.T) {
		t.Parallel()
		s := NewDocumentStore()

		_, err := s.Get(ctx, "jobs", "x")
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		err = s.Update(ctx, "jobs", "x", map[string]any{"status": "closed"})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("should merge top-level keys on update", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		s := NewDocumentStore()
		require.NoError(t, s.Set(ctx, "jobs", "j1", map[string]any{"title": "Caixa", "status": "open"}))

		// --- Act ---
		require.NoError(t, s.Update(ctx, "jobs", "j1", map[string]any{"status": "closed"}))

		// --- Assert ---
		d, err := s.Get(ctx, "jobs", "j1")
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(d.Data, &got))
		assert.Equal(t, map[string]any{"title": "Caixa", "status": "closed"}, got)
	})

	t.Run("should filter with equality and inequality", func(t *testing.T) {
		t.Parallel()
		s := NewDocumentStore()
		require.NoError(t, s.Set(ctx, "applications", "a1", map[string]any{"jobId": "j1", "status": "IN_PROGRESS", "n": 1}))
		require.NoError(t, s.Set(ctx, "applications", "a2", map[string]any{"jobId": "j1", "status": "REJECTED", "n": 2}))
		require.NoError(t, s.Set(ctx, "applications", "a3", map[string]any{"jobId": "j2", "status": "IN_PROGRESS"}))

		byJob, err := s.Query(ctx, "applications", repository.Eq("jobId", "j1"))
		require.NoError(t, err)
		assert.Len(t, byJob, 2)

		open, err := s.Query(ctx, "applications", repository.Eq("jobId", "j1"), repository.Neq("status", "REJECTED"))
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, "a1", open[0].ID)

		numeric, err := s.Query(ctx, "applications", repository.Eq("n", 2))
		require.NoError(t, err)
		require.Len(t, numeric, 1)
		assert.Equal(t, "a2", numeric[0].ID)

		missing, err := s.Query(ctx, "applications", repository.Neq("n", 1))
		require.NoError(t, err)
		require.Len(t, missing, 1, "documents without the field do not match !=")
	})

	t.Run("should reject non-object documents", func(t *testing.T) {
		t.Parallel()
		s := NewDocumentStore()
		err := s.Set(ctx, "jobs", "j1", []int{1})
		assert.Error(t, err)
	})
}
