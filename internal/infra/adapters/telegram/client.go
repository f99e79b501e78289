// Package telegram mirrors outbound chat messages to a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/logging"
	"whatsapp-recruiting-funnel/internal/payload"
)

var _ adapter.MessagingClient = (*Client)(nil)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends every message to one configured chat, labelled with the
// (redacted) address it was meant for.
type Client struct {
	bot    botAPI
	chatID int64
	dev    bool
	log    *zerolog.Logger
}

func NewClient(cfg *config.TelegramConfig, dev bool, logger *zerolog.Logger) (*Client, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newClient(bot, cfg.ChatID, dev, logger), nil
}

func newClient(bot botAPI, chatID int64, dev bool, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "TelegramMirror").Logger()
	return &Client{bot: bot, chatID: chatID, dev: dev, log: &l}
}

func (c *Client) SendMessage(ctx context.Context, address string, p payload.Payload, opts adapter.SendOptions) (adapter.SendResult, error) {
	msgs, err := Render(c.chatID, p, "["+logging.Redact(address, c.dev)+"] ")
	if err != nil {
		return adapter.SendResult{}, err
	}
	if opts.TypingDelay > 0 {
		if _, err := c.bot.Request(tgbotapi.NewChatAction(c.chatID, tgbotapi.ChatTyping)); err != nil {
			c.log.Debug().Err(err).Msg("typing action failed")
		}
	}
	var last tgbotapi.Message
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return adapter.SendResult{}, err
		}
		last, err = c.bot.Send(m)
		if err != nil {
			return adapter.SendResult{}, err
		}
	}
	return adapter.SendResult{DeliveryID: strconv.Itoa(last.MessageID)}, nil
}
