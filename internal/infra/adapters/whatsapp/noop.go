package whatsapp

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/payload"
)

var _ adapter.MessagingClient = (*NoopClient)(nil)

// NoopClient logs outbound messages instead of publishing them. Used when no
// gateway is configured.
type NoopClient struct {
	log *zerolog.Logger
}

func NewNoopClient(logger *zerolog.Logger) *NoopClient {
	l := logger.With().Str("component", "NoopWhatsApp").Logger()
	return &NoopClient{log: &l}
}

func (n *NoopClient) SendMessage(ctx context.Context, address string, p payload.Payload, opts adapter.SendOptions) (adapter.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return adapter.SendResult{}, err
	}
	id := uuid.NewString()
	n.log.Info().
		Str("to", address).
		Str("kind", string(p.PayloadType())).
		Dur("typing_delay", opts.TypingDelay).
		Str("correlation_id", opts.CorrelationID).
		Msg("outbound message (noop)")
	return adapter.SendResult{DeliveryID: id}, nil
}
