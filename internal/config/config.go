// SPDX-License-Identifier: MIT

// Package config loads and validates wa2bank configuration with
// precedence ENV > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the complete runtime configuration for the service.
type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	LogLevel   string `yaml:"logLevel"`

	// Webhook ingress protection
	RateLimitPerMinute int `yaml:"rateLimitPerMinute"`

	WhatsApp  WhatsAppConfig  `yaml:"whatsapp"`
	LLM       LLMConfig       `yaml:"llm"`
	Finlake   FinlakeConfig   `yaml:"finlake"`
	Session   SessionConfig   `yaml:"session"`
	Dialog    DialogConfig    `yaml:"dialog"`
	Audit     AuditConfig     `yaml:"audit"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WhatsAppConfig holds Graph API settings for the messaging transport.
type WhatsAppConfig struct {
	GraphAPIVersion string `yaml:"graphApiVersion"`
	PhoneNumberID   string `yaml:"phoneNumberId"`
	Token           string `yaml:"token"`
	VerifyToken     string `yaml:"verifyToken"`
}

// LLMConfig holds settings for the chat-completions collaborator.
type LLMConfig struct {
	BaseURL          string  `yaml:"baseUrl"`
	APIKey           string  `yaml:"apiKey"`
	Model            string  `yaml:"model"`
	SystemPrompt     string  `yaml:"systemPrompt"`
	SystemPromptFile string  `yaml:"systemPromptFile"`
	RatePerSecond    float64 `yaml:"ratePerSecond"`
}

// FinlakeConfig holds banking API settings.
type FinlakeConfig struct {
	BaseURL          string        `yaml:"baseUrl"`
	AccountID        string        `yaml:"accountId"`
	Stage            string        `yaml:"stage"`
	PhoneCountryCode string        `yaml:"phoneCountryCode"`
	PhoneNumber      string        `yaml:"phoneNumber"`
	Timeout          time.Duration `yaml:"timeout"`
	BankCacheTTL     time.Duration `yaml:"bankCacheTtl"`
}

// SessionConfig selects and tunes the session store backend.
type SessionConfig struct {
	Backend       string        `yaml:"backend"` // redis | badger | memory
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDb"`
	BadgerDir     string        `yaml:"badgerDir"`
	TTL           time.Duration `yaml:"ttl"`
}

// DialogConfig tunes the dialogue state machine.
type DialogConfig struct {
	IdleReset   time.Duration `yaml:"idleReset"`
	DefaultLang string        `yaml:"defaultLang"`
}

// AuditConfig controls the fulfillment audit trail.
type AuditConfig struct {
	Path string `yaml:"path"` // sqlite file; empty disables auditing
}

// TelemetryConfig controls optional OTLP tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // http | grpc
	Endpoint     string  `yaml:"endpoint"`
	Environment  string  `yaml:"environment"`
	SamplingRate float64 `yaml:"samplingRate"`
}

func defaults() Config {
	return Config{
		ListenAddr:         ":8080",
		LogLevel:           "info",
		RateLimitPerMinute: 120,
		WhatsApp: WhatsAppConfig{
			GraphAPIVersion: "v20.0",
		},
		LLM: LLMConfig{
			BaseURL:       "https://api.openai.com/v1",
			Model:         "gpt-4o-mini",
			RatePerSecond: 5,
		},
		Finlake: FinlakeConfig{
			BaseURL:          "https://api-dev.finlake.tech/mobility",
			Stage:            "dev",
			PhoneCountryCode: "234",
			Timeout:          15 * time.Second,
			BankCacheTTL:     time.Hour,
		},
		Session: SessionConfig{
			Backend:   "redis",
			RedisAddr: "localhost:6379",
			TTL:       60 * time.Minute,
		},
		Dialog: DialogConfig{
			IdleReset:   60 * time.Second,
			DefaultLang: "en",
		},
		Telemetry: TelemetryConfig{
			Exporter:     "http",
			SamplingRate: 1.0,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in ascending precedence.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)

	if err := loadSystemPrompt(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadSystemPrompt resolves the NLU system prompt: env/file value first,
// then an adjacent system_prompt.txt, then a minimal built-in default.
func loadSystemPrompt(cfg *Config) error {
	if cfg.LLM.SystemPrompt != "" {
		return nil
	}
	file := cfg.LLM.SystemPromptFile
	if file == "" {
		file = "system_prompt.txt"
	}
	data, err := os.ReadFile(file)
	if err == nil {
		cfg.LLM.SystemPrompt = string(data)
		return nil
	}
	if cfg.LLM.SystemPromptFile != "" {
		// An explicitly configured prompt file must exist.
		return fmt.Errorf("system prompt file %s: %w", cfg.LLM.SystemPromptFile, err)
	}
	cfg.LLM.SystemPrompt = "You are a multilingual Nigerian banking NLU. Output only strict JSON."
	return nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c Config) Validate() error {
	var problems []string

	if c.ListenAddr == "" {
		problems = append(problems, "listen address must not be empty")
	}
	switch c.Session.Backend {
	case "redis", "badger", "memory":
	default:
		problems = append(problems, fmt.Sprintf("unknown session backend %q (redis, badger, memory)", c.Session.Backend))
	}
	if c.Session.Backend == "badger" && c.Session.BadgerDir == "" {
		problems = append(problems, "badger session backend requires a directory")
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}
	if c.Dialog.IdleReset <= 0 {
		problems = append(problems, "dialog idle reset must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		problems = append(problems, "rate limit must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry enabled but no endpoint configured")
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		problems = append(problems, "telemetry sampling rate must be within [0,1]")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
