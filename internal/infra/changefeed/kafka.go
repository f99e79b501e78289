package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
)

var _ adapter.ChangePublisher = (*KafkaPublisher)(nil)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequireAll,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           5 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewReader(cfg config.KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     250 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})
}

// eventKey keeps all events of one document on one partition, in write order.
func eventKey(ev model.ChangeEvent) []byte {
	return []byte(ev.Collection + "/" + ev.DocID)
}

type KafkaPublisher struct {
	w MessageWriter
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher { return &KafkaPublisher{w: w} }

func (p *KafkaPublisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   eventKey(ev),
		Value: body,
		Headers: []kafka.Header{
			{Key: "collection", Value: []byte(ev.Collection)},
			{Key: "kind", Value: []byte(ev.Kind)},
		},
		Time: ev.At,
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// KafkaConsumer feeds change events to a handler and commits each message once
// it is handled, skipped as malformed, or out of attempts.
type KafkaConsumer struct {
	r        MessageReader
	handle   adapter.ChangeHandler
	attempts int
	backoff  time.Duration
	log      *zerolog.Logger
}

func NewKafkaConsumer(r MessageReader, handle adapter.ChangeHandler, logger *zerolog.Logger) *KafkaConsumer {
	l := logger.With().Str("component", "KafkaConsumer").Logger()
	return &KafkaConsumer{r: r, handle: handle, attempts: 5, backoff: 200 * time.Millisecond, log: &l}
}

// Run blocks until ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer c.r.Close()
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn().Err(err).Msg("fetch failed")
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}
		c.process(ctx, m)
		if err := c.r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Err(err).Int64("offset", m.Offset).Msg("commit failed")
		}
	}
}

func (c *KafkaConsumer) process(ctx context.Context, m kafka.Message) {
	var ev model.ChangeEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		c.log.Error().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).Msg("malformed change event skipped")
		return
	}
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, ev)
		if err == nil {
			return
		}
		if !domain.IsRetryable(err) || attempt >= c.attempts || errors.Is(err, context.Canceled) {
			c.log.Error().Err(err).
				Str("collection", ev.Collection).
				Str("doc_id", ev.DocID).
				Int("attempts", attempt).
				Msg("change event dropped")
			return
		}
		if !sleep(ctx, delay) {
			return
		}
		delay *= 2
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
