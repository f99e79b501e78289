package payload_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/payload"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type countingHandler struct {
	payload.Handler
	calls int
}

func (h *countingHandler) CharacterCount(p payload.Payload) int {
	h.calls++
	return 1
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("should cover every payload type by default", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, payload.NewDefaultRegistry().MissingTypes())
	})

	t.Run("should report missing handlers on an empty registry", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, payload.AllTypes, payload.NewRegistry().MissingTypes())
	})

	t.Run("should let the last registration win", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		reg := payload.NewDefaultRegistry()
		h := &countingHandler{Handler: payload.NewTextHandler()}

		// --- Act ---
		reg.Register(payload.TypeText, payload.NewTextHandler())
		reg.Register(payload.TypeText, h)
		n, err := reg.CharacterCount(payload.Text{Text: "abcdef"})

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, h.calls)
	})

	t.Run("should fail loudly for unregistered types", func(t *testing.T) {
		t.Parallel()
		reg := payload.NewRegistry()

		_, err := reg.Handler(payload.Text{Text: "x"})
		assert.True(t, errors.Is(err, domain.ErrUnregisteredPayloadType))

		_, err = reg.TypingDelay(payload.Text{Text: "x"}, 0)
		assert.True(t, errors.Is(err, domain.ErrUnregisteredPayloadType))

		_, err = reg.ParseVariables(nil, nil, "")
		assert.True(t, errors.Is(err, domain.ErrUnregisteredPayloadType))
	})

	t.Run("should treat unregistered type as invalid input in Validate", func(t *testing.T) {
		t.Parallel()
		reg := payload.NewRegistry()
		reg.Register(payload.TypeText, payload.NewTextHandler())

		assert.NotNil(t, reg.Validate([]byte(`{"type":"text","text":"x"}`)))
		assert.Nil(t, reg.Validate([]byte(`{"type":"image","image":"https://a.io/x.png"}`)))
	})
}

func TestTypingDelay(t *testing.T) {
	t.Parallel()

	t.Run("should stay within bounds", func(t *testing.T) {
		t.Parallel()
		for _, speed := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3, 0, 1, 10, 15, 18, 25, 60, 1000} {
			for _, chars := range []int{0, 1, 40, 400, 100000} {
				for i := 0; i < 20; i++ {
					d := payload.TypingDelay(chars, speed, nil)
					require.GreaterOrEqual(t, d, 1)
					require.LessOrEqual(t, d, 15)
				}
				for _, r := range []float64{0, 0.5, 0.999999} {
					d := payload.TypingDelay(chars, speed, fixedRand(r))
					require.GreaterOrEqual(t, d, 1)
					require.LessOrEqual(t, d, 15)
				}
			}
		}
	})

	t.Run("should follow the typing model for a fixed source", func(t *testing.T) {
		t.Parallel()
		// cps 20, 5000ms typing + 200ms thinking
		assert.Equal(t, 5, payload.TypingDelay(100, 25, fixedRand(0)))
		// cps 25, 4000ms typing + 350ms thinking
		assert.Equal(t, 4, payload.TypingDelay(100, 25, fixedRand(0.5)))
		// slow speeds are raised to 15 cps
		assert.Equal(t, 1, payload.TypingDelay(10, 5, fixedRand(0)))
		// NaN falls back to the default speed
		assert.Equal(t, 5, payload.TypingDelay(100, math.NaN(), fixedRand(0)))
	})

	t.Run("should use the registry source", func(t *testing.T) {
		t.Parallel()
		reg := payload.NewDefaultRegistry(payload.WithRand(fixedRand(0)))
		text := payload.Text{Text: strings.Repeat("a", 100)}

		d, err := reg.TypingDelay(text, 0)

		require.NoError(t, err)
		assert.Equal(t, 5, d)
	})
}
