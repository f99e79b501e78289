package adapter

import (
	"context"
	"time"

	"whatsapp-recruiting-funnel/internal/payload"
)

type SendOptions struct {
	// TypingDelay is how long the client shows "typing..." before delivery.
	TypingDelay   time.Duration
	CorrelationID string
}

type SendResult struct {
	DeliveryID string
}

// MessagingClient delivers a payload to a chat address (a phone-derived conversation id).
type MessagingClient interface {
	SendMessage(ctx context.Context, address string, p payload.Payload, opts SendOptions) (SendResult, error)
}
