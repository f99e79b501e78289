// Package whatsapp publishes outbound chat messages to the WhatsApp gateway
// exchange over AMQP.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/payload"
)

var _ adapter.MessagingClient = (*Client)(nil)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type Client struct {
	conn        *amqp091.Connection
	openChannel func() (publishChannel, error)
	exchange    string
	routingKey  string
	reg         *payload.Registry
	log         *zerolog.Logger
	now         func() time.Time
}

// Dial connects and declares the durable topic exchange.
func Dial(cfg config.WhatsAppConfig, reg *payload.Registry, logger *zerolog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	c := newClient(func() (publishChannel, error) { return conn.Channel() }, cfg, reg, logger)
	c.conn = conn
	return c, nil
}

func newClient(open func() (publishChannel, error), cfg config.WhatsAppConfig, reg *payload.Registry, logger *zerolog.Logger) *Client {
	if reg == nil {
		reg = payload.NewDefaultRegistry()
	}
	l := logger.With().Str("component", "WhatsAppClient").Logger()
	return &Client{
		openChannel: open,
		exchange:    cfg.Exchange,
		routingKey:  cfg.RoutingKey,
		reg:         reg,
		log:         &l,
		now:         time.Now,
	}
}

func (c *Client) SendMessage(ctx context.Context, address string, p payload.Payload, opts adapter.SendOptions) (adapter.SendResult, error) {
	env, err := c.envelope(address, p, opts)
	if err != nil {
		return adapter.SendResult{}, err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return adapter.SendResult{}, fmt.Errorf("encode envelope: %w", err)
	}

	ch, err := c.openChannel()
	if err != nil {
		return adapter.SendResult{}, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	cid := opts.CorrelationID
	if cid == "" {
		cid = env.OutboundID
	}
	err = ch.PublishWithContext(ctx, c.exchange, c.routingKey, false, false, amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.OutboundID,
		CorrelationId: cid,
		Timestamp:     env.AtHub,
		Type:          string(env.Kind),
		Body:          body,
	})
	if err != nil {
		return adapter.SendResult{}, fmt.Errorf("publish outbound %s: %w", env.OutboundID, err)
	}
	c.log.Debug().Str("outbound_id", env.OutboundID).Str("kind", string(env.Kind)).Msg("outbound published")
	return adapter.SendResult{DeliveryID: env.OutboundID}, nil
}

func (c *Client) envelope(address string, p payload.Payload, opts adapter.SendOptions) (Envelope, error) {
	raw, err := json.Marshal(payload.Deref(p))
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload: %w", err)
	}
	fields, err := c.reg.PrimaryTextFields(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		OutboundID:    uuid.NewString(),
		To:            address,
		Kind:          p.PayloadType(),
		Payload:       raw,
		TextPreview:   previewOf(fields),
		Fingerprint:   fingerprint(raw),
		TypingDelayMs: opts.TypingDelay.Milliseconds(),
		CorrelationID: opts.CorrelationID,
		AtHub:         c.now().UTC(),
	}, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
