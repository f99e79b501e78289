package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"whatsapp-recruiting-funnel/internal/config"
	"whatsapp-recruiting-funnel/internal/domain/model"
	"whatsapp-recruiting-funnel/internal/domain/ports/adapter"
	"whatsapp-recruiting-funnel/internal/domain/ports/repository"
	"whatsapp-recruiting-funnel/internal/infra/adapters/ai"
	"whatsapp-recruiting-funnel/internal/infra/adapters/telegram"
	"whatsapp-recruiting-funnel/internal/infra/adapters/whatsapp"
	"whatsapp-recruiting-funnel/internal/infra/db/memory"
	pg "whatsapp-recruiting-funnel/internal/infra/db/postgres"
	"whatsapp-recruiting-funnel/internal/payload"
)

// openStore returns the raw document store and, for postgres, its pool.
func openStore(ctx context.Context, cfg *config.Config) (repository.DocumentStore, *pgxpool.Pool, error) {
	switch cfg.Store.Driver {
	case "memory":
		return memory.NewDocumentStore(), nil, nil
	default:
		pool, err := pg.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := pg.NewDocumentStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return store, pool, nil
	}
}

// observedCollections are the collections whose changes drive the funnel.
var observedCollections = []string{model.CollectionConversations, model.CollectionJobs}

func buildGenerator(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.InterviewGenerator, error) {
	providers := map[string]adapter.InterviewGenerator{}
	if cfg.OpenAIKey != "" {
		g, err := ai.NewOpenAIGenerator(cfg.OpenAIKey, cfg.OpenAIBaseURL, modelFor("openai", cfg), cfg.MaxPromptTokens)
		if err != nil {
			return nil, fmt.Errorf("openai: %w", err)
		}
		providers["openai"] = ai.Instrument("openai", g)
	}
	if cfg.GeminiKey != "" {
		g, err := ai.NewGeminiGenerator(ctx, cfg.GeminiKey, modelFor("gemini", cfg), cfg.MaxPromptTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		providers["gemini"] = ai.Instrument("gemini", g)
	}
	if len(providers) == 0 || cfg.Provider == "noop" {
		logger.Warn().Msg("no AI provider configured; interview plans use the noop generator")
		return ai.Instrument("noop", ai.NewNoopGenerator(logger)), nil
	}
	return ai.NewLimitedGenerator(ai.NewMultiGenerator(cfg.Provider, providers), cfg.ConcurrentLimit), nil
}

// modelFor keeps the configured model for the default provider only; the
// fallback provider uses its own default model.
func modelFor(provider string, cfg config.AIConfig) string {
	if provider == cfg.Provider {
		return cfg.Model
	}
	return ""
}

type closer func() error

func buildMessaging(cfg *config.Config, reg *payload.Registry, logger *zerolog.Logger) (primary adapter.MessagingClient, mirrors []adapter.MessagingClient, closers []closer, err error) {
	if cfg.WhatsApp.AMQPURL != "" {
		c, err := whatsapp.Dial(cfg.WhatsApp, reg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("whatsapp: %w", err)
		}
		primary = c
		closers = append(closers, c.Close)
	} else {
		logger.Warn().Msg("whatsapp.amqp_url not set; outbound messages are only logged")
		primary = whatsapp.NewNoopClient(logger)
	}
	if cfg.Telegram.Token != "" {
		t, err := telegram.NewClient(&cfg.Telegram, cfg.Runtime.Dev, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("telegram: %w", err)
		}
		mirrors = append(mirrors, t)
	}
	return primary, mirrors, closers, nil
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
