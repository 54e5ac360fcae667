// SPDX-License-Identifier: MIT

// Package api exposes the HTTP surface: the WhatsApp webhook, health
// and Prometheus metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xglog "github.com/flkbot/wa2bank/internal/log"
	"github.com/flkbot/wa2bank/internal/whatsapp"
)

const maxWebhookBody = 1 << 20

// TurnHandler processes one inbound message end to end.
type TurnHandler interface {
	HandleTurn(ctx context.Context, userKey, text string)
}

// Config tunes the HTTP surface.
type Config struct {
	// VerifyToken is the webhook subscription verification token.
	VerifyToken string
	// RateLimitPerMinute caps webhook posts per client IP. Zero
	// disables the limiter.
	RateLimitPerMinute int
}

// Server is the HTTP handler set for the bot.
type Server struct {
	cfg    Config
	turns  TurnHandler
	router chi.Router
}

// New builds the router with the standard middleware stack.
func New(cfg Config, turns TurnHandler) *Server {
	s := &Server{cfg: cfg, turns: turns}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RateLimitPerMinute > 0 {
			r.Use(rateLimit(cfg.RateLimitPerMinute, time.Minute))
		}
		r.Get("/webhook", s.handleVerify)
		r.Post("/webhook", s.handleWebhook)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleVerify answers the Cloud API subscription handshake: echo
// hub.challenge when the verify token matches, 403 otherwise.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == s.cfg.VerifyToken {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "verification failed", http.StatusForbidden)
}

// handleWebhook ingests one webhook delivery. It always answers 200 so
// the platform never retries; per-message failures are contained.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := xglog.WithComponentFromContext(r.Context(), "api")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn().Err(err).Msg("webhook body read failed")
		w.WriteHeader(http.StatusOK)
		return
	}

	var payload whatsapp.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn().Err(err).Msg("webhook payload decode failed")
		w.WriteHeader(http.StatusOK)
		return
	}
	if payload.Object != whatsapp.BusinessAccountObject {
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, msg := range whatsapp.ExtractMessages(payload) {
		if msg.Text == "" {
			continue
		}
		s.handleMessage(r.Context(), msg)
	}
	w.WriteHeader(http.StatusOK)
}

// handleMessage isolates one message: a panic in one turn must not take
// down the rest of the batch or the delivery.
func (s *Server) handleMessage(ctx context.Context, msg whatsapp.InboundMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			l := xglog.WithComponentFromContext(ctx, "api")
			l.Error().
				Interface("panic", rec).
				Msg("turn panicked")
		}
	}()
	s.turns.HandleTurn(ctx, msg.From, msg.Text)
}
