// SPDX-License-Identifier: MIT

// Command botd runs the WhatsApp banking assistant: webhook ingress,
// dialogue engine and banking backend wiring.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/flkbot/wa2bank/internal/api"
	"github.com/flkbot/wa2bank/internal/audit"
	"github.com/flkbot/wa2bank/internal/bankdir"
	"github.com/flkbot/wa2bank/internal/banking"
	"github.com/flkbot/wa2bank/internal/config"
	"github.com/flkbot/wa2bank/internal/dialog"
	"github.com/flkbot/wa2bank/internal/dialog/store"
	"github.com/flkbot/wa2bank/internal/finlake"
	"github.com/flkbot/wa2bank/internal/llm"
	xglog "github.com/flkbot/wa2bank/internal/log"
	"github.com/flkbot/wa2bank/internal/telemetry"
	"github.com/flkbot/wa2bank/internal/whatsapp"
)

var (
	version   = "v1.2.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "wa2bank",
		Version: version,
	})
	logger := xglog.WithComponent("botd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: "wa2bank",
		Version: version,
	})
	logger.Info().
		Str("event", "config.loaded").
		Str("listen_addr", cfg.ListenAddr).
		Str("session_backend", cfg.Session.Backend).
		Msg("configuration loaded")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "wa2bank",
		ServiceVersion: version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	sessions, closeSessions, err := store.New(cfg.Session)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logger.Warn().Err(err).Msg("session store close failed")
		}
	}()

	var auditor dialog.Auditor
	if cfg.Audit.Path != "" {
		trail, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Audit.Path).Msg("failed to open audit trail")
		}
		defer func() {
			if err := trail.Close(); err != nil {
				logger.Warn().Err(err).Msg("audit trail close failed")
			}
		}()
		auditor = trail
	}

	bank := finlake.New(finlake.Config{
		BaseURL:          cfg.Finlake.BaseURL,
		AccountID:        cfg.Finlake.AccountID,
		Stage:            cfg.Finlake.Stage,
		PhoneCountryCode: cfg.Finlake.PhoneCountryCode,
		PhoneNumber:      cfg.Finlake.PhoneNumber,
		Timeout:          cfg.Finlake.Timeout,
	})
	banks := bankdir.New(bank.ListBanks, cfg.Finlake.BankCacheTTL)

	model := llm.New(llm.Config{
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		Model:         cfg.LLM.Model,
		SystemPrompt:  cfg.LLM.SystemPrompt,
		RatePerSecond: cfg.LLM.RatePerSecond,
	})

	sender := whatsapp.New(whatsapp.Config{
		GraphAPIVersion: cfg.WhatsApp.GraphAPIVersion,
		PhoneNumberID:   cfg.WhatsApp.PhoneNumberID,
		Token:           cfg.WhatsApp.Token,
	})

	resolver := dialog.NewLangResolver(cfg.Dialog.DefaultLang, banks.IsKnownName)
	controller := dialog.NewController(
		dialog.Config{
			IdleReset:   cfg.Dialog.IdleReset,
			DefaultLang: cfg.Dialog.DefaultLang,
		},
		sessions,
		model,
		model,
		banking.New(bank, banks),
		sender,
		auditor,
		resolver,
	)

	server := api.New(api.Config{
		VerifyToken:        cfg.WhatsApp.VerifyToken,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, controller)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           otelhttp.NewHandler(server.Handler(), "wa2bank"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("event", "server.listening").
			Str("addr", cfg.ListenAddr).
			Msg("webhook server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server terminated")
	}
	logger.Info().Str("event", "server.stopped").Msg("shutdown complete")
}
