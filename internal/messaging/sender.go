package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/infra/metrics"
	"whatsapp-recruiting-funnel/internal/payload"
)

// Sender validates a payload, attaches a simulated typing delay and hands it
// to the messaging client.
type Sender struct {
	client  adapter.MessagingClient
	facade  *Facade
	channel string
	log     zerolog.Logger
}

func NewSender(client adapter.MessagingClient, facade *Facade, channel string, logger *zerolog.Logger) *Sender {
	if facade == nil {
		facade = Global()
	}
	return &Sender{
		client:  client,
		facade:  facade,
		channel: channel,
		log:     logger.With().Str("component", "MessageSender").Str("channel", channel).Logger(),
	}
}

func (s *Sender) Send(ctx context.Context, address string, p payload.Payload, correlationID string) (adapter.SendResult, error) {
	valid := s.facade.Validate(p)
	if valid == nil {
		_, err := s.facade.Registry().ValidateDetailed(p)
		return adapter.SendResult{}, fmt.Errorf("send: %w", err)
	}
	delay, err := s.facade.Delay(valid)
	if err != nil {
		return adapter.SendResult{}, err
	}

	res, err := s.client.SendMessage(ctx, address, valid, adapter.SendOptions{
		TypingDelay:   time.Duration(delay) * time.Second,
		CorrelationID: correlationID,
	})
	if err != nil {
		metrics.IncMessageSent(string(valid.PayloadType()), s.channel, "failed")
		return adapter.SendResult{}, fmt.Errorf("send %s: %w", valid.PayloadType(), err)
	}
	metrics.IncMessageSent(string(valid.PayloadType()), s.channel, "sent")
	s.log.Debug().Str("type", string(valid.PayloadType())).Str("delivery_id", res.DeliveryID).Int("typing_delay_s", delay).Msg("message sent")
	return res, nil
}

// Fanout delivers to several clients, e.g. the WhatsApp gateway and a
// Telegram mirror. The first client's result is returned; mirror failures are
// logged only.
type Fanout struct {
	Primary adapter.MessagingClient
	Mirrors []adapter.MessagingClient
	Log     *zerolog.Logger
}

var _ adapter.MessagingClient = (*Fanout)(nil)

func (f *Fanout) SendMessage(ctx context.Context, address string, p payload.Payload, opts adapter.SendOptions) (adapter.SendResult, error) {
	res, err := f.Primary.SendMessage(ctx, address, p, opts)
	if err != nil {
		return res, err
	}
	for _, m := range f.Mirrors {
		if _, merr := m.SendMessage(ctx, address, p, opts); merr != nil && f.Log != nil {
			f.Log.Warn().Err(merr).Str("type", string(p.PayloadType())).Msg("mirror delivery failed")
		}
	}
	return res, nil
}
