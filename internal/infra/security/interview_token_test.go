package security

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain"
)

func TestInterviewTokens(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	newTokens := func(t *testing.T) *InterviewTokens {
		tk, err := NewInterviewTokens("https://entrevista.example.com/", "s3cret", time.Hour)
		require.NoError(t, err)
		tk.now = func() time.Time { return now }
		return tk
	}

	t.Run("should build a link that parses back to the same application", func(t *testing.T) {
		// --- Arrange ---
		tk := newTokens(t)

		// --- Act ---
		link, err := tk.LinkFor("a1", "c1", "j1")
		require.NoError(t, err)

		// --- Assert ---
		assert.True(t, strings.HasPrefix(link, "https://entrevista.example.com/a1?token="))
		u, err := url.Parse(link)
		require.NoError(t, err)
		claims, err := tk.Parse(u.Query().Get("token"))
		require.NoError(t, err)
		assert.Equal(t, "a1", claims.Subject)
		assert.Equal(t, "c1", claims.ConversationID)
		assert.Equal(t, "j1", claims.JobID)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		tk := newTokens(t)
		tok, err := tk.Sign("a1", "c1", "j1")
		require.NoError(t, err)

		tk.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = tk.Parse(tok)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		other, err := NewInterviewTokens("https://x.example.com", "other", time.Hour)
		require.NoError(t, err)
		other.now = func() time.Time { return now }
		tok, err := other.Sign("a1", "c1", "j1")
		require.NoError(t, err)

		_, err = newTokens(t).Parse(tok)

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("should require a secret and a valid base url", func(t *testing.T) {
		_, err := NewInterviewTokens("https://x", "", time.Hour)
		assert.Error(t, err)
		_, err = NewInterviewTokens("not a url", "s", time.Hour)
		assert.Error(t, err)
	})
}
