package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/payload"
)

type memChannel struct {
	published []amqp091.Publishing
	keys      []string
	Err       error
	closed    int
}

func (m *memChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if m.Err != nil {
		return m.Err
	}
	m.keys = append(m.keys, exchange+"/"+key)
	m.published = append(m.published, msg)
	return nil
}

func (m *memChannel) Close() error {
	m.closed++
	return nil
}

func newTestClient(ch *memChannel) *Client {
	logger := zerolog.Nop()
	return newClient(func() (publishChannel, error) { return ch, nil },
		config.WhatsAppConfig{Exchange: "whatsapp.outbound", RoutingKey: "chat.outbound"}, nil, &logger)
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("should publish a persistent envelope", func(t *testing.T) {
		t.Parallel()

		// --- Arrange ---
		ch := &memChannel{}
		c := newTestClient(ch)
		p := payload.ButtonActions{Text: "Olá Ana", Buttons: []payload.Button{{Type: payload.ButtonReply, ID: "optin:j1", Label: "Quero"}}}

		// --- Act ---
		res, err := c.SendMessage(ctx, "5511999990000", p, adapter.SendOptions{TypingDelay: 3 * time.Second, CorrelationID: "optin:a1"})

		// --- Assert ---
		require.NoError(t, err)
		require.Len(t, ch.published, 1)
		msg := ch.published[0]
		assert.Equal(t, "whatsapp.outbound/chat.outbound", ch.keys[0])
		assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
		assert.Equal(t, res.DeliveryID, msg.MessageId)
		assert.Equal(t, "optin:a1", msg.CorrelationId)
		assert.Equal(t, 1, ch.closed)

		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Body, &env))
		assert.Equal(t, "5511999990000", env.To)
		assert.Equal(t, payload.TypeButtonActions, env.Kind)
		assert.Equal(t, "Olá Ana", env.TextPreview)
		assert.Equal(t, int64(3000), env.TypingDelayMs)
		assert.Equal(t, fingerprint(env.Payload), env.Fingerprint)
		assert.True(t, strings.HasPrefix(string(env.Payload), `{"type":"button-actions"`))
	})

	t.Run("should fingerprint equal payloads equally", func(t *testing.T) {
		t.Parallel()
		ch := &memChannel{}
		c := newTestClient(ch)
		p := payload.Text{Text: "oi"}

		_, err := c.SendMessage(ctx, "5511999990000", p, adapter.SendOptions{})
		require.NoError(t, err)
		_, err = c.SendMessage(ctx, "5511999990001", &p, adapter.SendOptions{})
		require.NoError(t, err)

		var a, b Envelope
		require.NoError(t, json.Unmarshal(ch.published[0].Body, &a))
		require.NoError(t, json.Unmarshal(ch.published[1].Body, &b))
		assert.Equal(t, a.Fingerprint, b.Fingerprint)
		assert.NotEqual(t, a.OutboundID, b.OutboundID)
		assert.Equal(t, a.OutboundID, ch.published[0].CorrelationId, "correlation defaults to the outbound id")
	})

	t.Run("should surface publish failures", func(t *testing.T) {
		t.Parallel()
		ch := &memChannel{Err: errors.New("channel closed")}

		_, err := newTestClient(ch).SendMessage(ctx, "5511999990000", payload.Text{Text: "oi"}, adapter.SendOptions{})

		assert.ErrorIs(t, err, ch.Err)
	})
}

func TestPreview(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", previewOf(map[string]string{}))
	assert.Equal(t, "corpo", previewOf(map[string]string{"text": "corpo", "button_0_label": "a"}))
	assert.Equal(t, "legenda", previewOf(map[string]string{"card_1_text": "outra", "card_0_text": "legenda"}))

	long := strings.Repeat("é", 300) // 600 bytes
	clipped := previewOf(map[string]string{"text": long})
	assert.LessOrEqual(t, len(clipped), maxPreviewBytes)
	assert.Equal(t, 256, len([]rune(clipped)))
}
