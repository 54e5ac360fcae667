// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"time"

	xglog "github.com/flkbot/wa2bank/internal/log"
)

// applyEnv overlays WA2B_* environment variables onto cfg.
// Environment always wins over file and defaults.
func applyEnv(cfg *Config) {
	setString(&cfg.ListenAddr, "WA2B_LISTEN")
	setString(&cfg.LogLevel, "WA2B_LOG_LEVEL")
	setInt(&cfg.RateLimitPerMinute, "WA2B_RATE_LIMIT_PER_MINUTE")

	setString(&cfg.WhatsApp.GraphAPIVersion, "WA2B_GRAPH_API_VERSION")
	setString(&cfg.WhatsApp.PhoneNumberID, "WA2B_PHONE_NUMBER_ID")
	setString(&cfg.WhatsApp.Token, "WA2B_WHATSAPP_TOKEN")
	setString(&cfg.WhatsApp.VerifyToken, "WA2B_VERIFY_TOKEN")

	setString(&cfg.LLM.BaseURL, "WA2B_LLM_BASE_URL")
	setString(&cfg.LLM.APIKey, "WA2B_LLM_API_KEY")
	setString(&cfg.LLM.Model, "WA2B_LLM_MODEL")
	setString(&cfg.LLM.SystemPrompt, "WA2B_SYSTEM_PROMPT")
	setString(&cfg.LLM.SystemPromptFile, "WA2B_SYSTEM_PROMPT_FILE")
	setFloat(&cfg.LLM.RatePerSecond, "WA2B_LLM_RATE_PER_SECOND")

	setString(&cfg.Finlake.BaseURL, "WA2B_FLK_BASE_URL")
	setString(&cfg.Finlake.AccountID, "WA2B_FLK_ACCOUNT_ID")
	setString(&cfg.Finlake.Stage, "WA2B_FLK_STAGE")
	setString(&cfg.Finlake.PhoneCountryCode, "WA2B_FLK_PHONE_COUNTRY_CODE")
	setString(&cfg.Finlake.PhoneNumber, "WA2B_FLK_PHONE_NUMBER")
	setDuration(&cfg.Finlake.Timeout, "WA2B_FLK_TIMEOUT")
	setDuration(&cfg.Finlake.BankCacheTTL, "WA2B_BANK_CACHE_TTL")

	setString(&cfg.Session.Backend, "WA2B_SESSION_BACKEND")
	setString(&cfg.Session.RedisAddr, "WA2B_REDIS_ADDR")
	setString(&cfg.Session.RedisPassword, "WA2B_REDIS_PASSWORD")
	setInt(&cfg.Session.RedisDB, "WA2B_REDIS_DB")
	setString(&cfg.Session.BadgerDir, "WA2B_BADGER_DIR")
	setDuration(&cfg.Session.TTL, "WA2B_SESSION_TTL")

	setDuration(&cfg.Dialog.IdleReset, "WA2B_IDLE_RESET")
	setString(&cfg.Dialog.DefaultLang, "WA2B_DEFAULT_LANG")

	setString(&cfg.Audit.Path, "WA2B_AUDIT_PATH")

	setBool(&cfg.Telemetry.Enabled, "WA2B_OTEL_ENABLED")
	setString(&cfg.Telemetry.Exporter, "WA2B_OTEL_EXPORTER")
	setString(&cfg.Telemetry.Endpoint, "WA2B_OTEL_ENDPOINT")
	setString(&cfg.Telemetry.Environment, "WA2B_OTEL_ENVIRONMENT")
	setFloat(&cfg.Telemetry.SamplingRate, "WA2B_OTEL_SAMPLING_RATE")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		warnInvalid(key, v)
		return
	}
	*dst = i
}

func setFloat(dst *float64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		warnInvalid(key, v)
		return
	}
	*dst = f
}

func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		warnInvalid(key, v)
		return
	}
	*dst = b
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		warnInvalid(key, v)
		return
	}
	*dst = d
}

func warnInvalid(key, value string) {
	l := xglog.WithComponent("config")
	l.Warn().
		Str("key", key).
		Str("value", value).
		Msg("invalid environment value, keeping previous setting")
}
