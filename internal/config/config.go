// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Addr          string        `yaml:"addr"`
	InboundLimit  int           `yaml:"inbound_limit"`  // messages per sender per window
	InboundWindow time.Duration `yaml:"inbound_window"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // postgres | memory
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type AsynqConfig struct {
	Concurrency int            `yaml:"concurrency"`
	Queues      map[string]int `yaml:"queues"`
	Timeout     time.Duration  `yaml:"timeout"`
	MaxRetry    int            `yaml:"max_retry"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type WhatsAppConfig struct {
	AMQPURL    string `yaml:"amqp_url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"` // mirror channel
}

type AIConfig struct {
	Provider        string `yaml:"provider"` // openai | gemini | noop
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	GeminiKey       string `yaml:"gemini_key"`
	Model           string `yaml:"model"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
}

type FunnelConfig struct {
	InterviewBaseURL     string        `yaml:"interview_base_url"`
	OptInDelay           time.Duration `yaml:"optin_delay"`
	Timezone             string        `yaml:"timezone"`
	Locale               string        `yaml:"locale"`
	Placeholder          string        `yaml:"placeholder"`
	TypingSpeed          float64       `yaml:"typing_speed"`
	InterviewTokenSecret string        `yaml:"interview_token_secret"`
	InterviewTokenTTL    time.Duration `yaml:"interview_token_ttl"`
	ClosureSweepInterval time.Duration `yaml:"closure_sweep_interval"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Asynq    AsynqConfig    `yaml:"asynq"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Telegram TelegramConfig `yaml:"telegram"`
	AI       AIConfig       `yaml:"ai"`
	Funnel   FunnelConfig   `yaml:"funnel"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the yaml file at path, applies environment overrides and
// defaults, and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("INTERVIEW_TOKEN_SECRET"); v != "" {
		cfg.Funnel.InterviewTokenSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.InboundLimit <= 0 {
		cfg.HTTP.InboundLimit = 20
	}
	if cfg.HTTP.InboundWindow <= 0 {
		cfg.HTTP.InboundWindow = time.Minute
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "postgres"
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}
	if cfg.Asynq.Concurrency <= 0 {
		cfg.Asynq.Concurrency = 10
	}
	if len(cfg.Asynq.Queues) == 0 {
		cfg.Asynq.Queues = map[string]int{"funnel": 6, "default": 3}
	}
	if cfg.Asynq.Timeout <= 0 {
		cfg.Asynq.Timeout = 2 * time.Minute
	}
	if cfg.Asynq.MaxRetry <= 0 {
		cfg.Asynq.MaxRetry = 8
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "documents.changes"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "funnel-observer"
	}
	if cfg.WhatsApp.Exchange == "" {
		cfg.WhatsApp.Exchange = "whatsapp.outbound"
	}
	if cfg.WhatsApp.RoutingKey == "" {
		cfg.WhatsApp.RoutingKey = "chat.outbound"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 3000
	}
	if cfg.Funnel.OptInDelay <= 0 {
		cfg.Funnel.OptInDelay = 10 * time.Second
	}
	if cfg.Funnel.Timezone == "" {
		cfg.Funnel.Timezone = "America/Sao_Paulo"
	}
	if cfg.Funnel.Locale == "" {
		cfg.Funnel.Locale = "pt-BR"
	}
	if cfg.Funnel.Placeholder == "" {
		cfg.Funnel.Placeholder = "[%s]"
	}
	if cfg.Funnel.TypingSpeed <= 0 {
		cfg.Funnel.TypingSpeed = 25
	}
	if cfg.Funnel.InterviewTokenTTL <= 0 {
		cfg.Funnel.InterviewTokenTTL = 14 * 24 * time.Hour
	}
	if cfg.Funnel.ClosureSweepInterval <= 0 {
		cfg.Funnel.ClosureSweepInterval = 5 * time.Minute
	}
}

// Minimal validation
func validate(cfg *Config) error {
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.New("database.url is required")
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver %q is not supported", cfg.Store.Driver)
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Funnel.InterviewBaseURL == "" {
		return errors.New("funnel.interview_base_url is required")
	}
	if cfg.Funnel.InterviewTokenSecret == "" {
		return errors.New("funnel.interview_token_secret is required")
	}
	if math.IsNaN(cfg.Funnel.TypingSpeed) || math.IsInf(cfg.Funnel.TypingSpeed, 0) {
		return errors.New("funnel.typing_speed must be a finite number")
	}
	if _, err := time.LoadLocation(cfg.Funnel.Timezone); err != nil {
		return fmt.Errorf("funnel.timezone: %w", err)
	}
	return nil
}
