package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/payload"
)

func TestRender(t *testing.T) {
	t.Parallel()
	const chat = int64(42)

	t.Run("should render text and media", func(t *testing.T) {
		t.Parallel()

		msgs, err := Render(chat, payload.Text{Text: "oi"}, "> ")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "> oi", msgs[0].(tgbotapi.MessageConfig).Text)

		msgs, err = Render(chat, &payload.Image{Image: "https://x.example/a.png", Text: "foto"}, "")
		require.NoError(t, err)
		photo := msgs[0].(tgbotapi.PhotoConfig)
		assert.Equal(t, "foto", photo.Caption)

		msgs, err = Render(chat, payload.Document{DocumentURL: "https://x.example/cv.pdf", Extension: "pdf", Caption: "cv"}, "")
		require.NoError(t, err)
		assert.Equal(t, "cv", msgs[0].(tgbotapi.DocumentConfig).Caption)

		msgs, err = Render(chat, payload.Audio{Audio: "https://x.example/a.ogg", Transcription: "olá"}, "")
		require.NoError(t, err)
		assert.Equal(t, "olá", msgs[0].(tgbotapi.AudioConfig).Caption)

		msgs, err = Render(chat, payload.Link{Text: "veja", LinkURL: "https://x.example", Title: "Vaga"}, "")
		require.NoError(t, err)
		assert.Equal(t, "veja\nVaga\nhttps://x.example", msgs[0].(tgbotapi.MessageConfig).Text)
	})

	t.Run("should render buttons as an inline keyboard", func(t *testing.T) {
		t.Parallel()
		p := payload.ButtonActions{
			Title: "Entrevista",
			Text:  "Parabéns",
			Buttons: []payload.Button{
				{Type: payload.ButtonURL, Label: "Abrir", URL: "https://x.example/i"},
				{Type: payload.ButtonReply, ID: "optin:j1", Label: "Quero"},
				{Type: payload.ButtonCall, Label: "Ligar", Phone: "+5511999990000"},
			},
		}

		msgs, err := Render(chat, p, "")

		require.NoError(t, err)
		msg := msgs[0].(tgbotapi.MessageConfig)
		assert.Equal(t, "Entrevista\n\nParabéns", msg.Text)
		kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		require.Len(t, kb.InlineKeyboard, 3)
		assert.Equal(t, "https://x.example/i", *kb.InlineKeyboard[0][0].URL)
		assert.Equal(t, "optin:j1", *kb.InlineKeyboard[1][0].CallbackData)
		assert.Equal(t, "call:+5511999990000", *kb.InlineKeyboard[2][0].CallbackData)
	})

	t.Run("should expand a carousel into one photo per card", func(t *testing.T) {
		t.Parallel()
		p := payload.Carousel{Text: "Vagas", Cards: []payload.Card{
			{Image: payload.ImageFields{Image: "https://x.example/1.png"}, Text: "Caixa"},
			{Image: payload.ImageFields{Image: "https://x.example/2.png"}, Text: "Estoque",
				Buttons: []payload.Button{{Type: payload.ButtonReply, Label: "Quero"}}},
		}}

		msgs, err := Render(chat, p, "")

		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "Caixa", msgs[1].(tgbotapi.PhotoConfig).Caption)
		assert.Nil(t, msgs[1].(tgbotapi.PhotoConfig).ReplyMarkup)
		assert.NotNil(t, msgs[2].(tgbotapi.PhotoConfig).ReplyMarkup)
	})
}

type memBot struct {
	sent     []tgbotapi.Chattable
	requests int
	SendErr  error
}

func (b *memBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.SendErr != nil {
		return tgbotapi.Message{}, b.SendErr
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *memBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("should mirror with a redacted address", func(t *testing.T) {
		t.Parallel()
		bot := &memBot{}
		c := newClient(bot, 42, false, &logger)

		res, err := c.SendMessage(ctx, "5511999990000", payload.Text{Text: "oi"}, adapter.SendOptions{TypingDelay: time.Second})

		require.NoError(t, err)
		assert.Equal(t, "1", res.DeliveryID)
		assert.Equal(t, 1, bot.requests)
		assert.Equal(t, "[5511...00] oi", bot.sent[0].(tgbotapi.MessageConfig).Text)
	})

	t.Run("should return send failures", func(t *testing.T) {
		t.Parallel()
		bot := &memBot{SendErr: errors.New("chat not found")}

		_, err := newClient(bot, 42, true, &logger).SendMessage(ctx, "5511999990000", payload.Text{Text: "oi"}, adapter.SendOptions{})

		assert.ErrorIs(t, err, bot.SendErr)
		assert.Zero(t, bot.requests)
	})
}
