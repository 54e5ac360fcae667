// SPDX-License-Identifier: MIT

// Package llm calls an OpenAI-compatible chat-completions endpoint for
// NLU parsing and one-line localization.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/flkbot/wa2bank/internal/metrics"
	"github.com/flkbot/wa2bank/internal/telemetry"
)

const oneLinerSystemPrompt = `Translate or rewrite the given line into the exact target language indicated by 'lang'.
STRICT RULES:
1) Return ONE short professional sentence; no emojis, no extra words.
2) If the line contains a money amount like 'NGN 123,456.78', PRESERVE the currency and digits exactly.
3) Do NOT add opinions, jokes, or commentary.
4) If lang is pcm/ig/yo/ha, do NOT output English or code-mix.
5) Use the neutral templates for that language.
6) Output only the sentence.`

// Config carries connection settings for the chat-completions endpoint.
type Config struct {
	BaseURL       string
	APIKey        string
	Model         string
	SystemPrompt  string
	RatePerSecond float64
}

// Client is a rate-limited chat-completions client.
type Client struct {
	base         string
	apiKey       string
	model        string
	systemPrompt string
	http         *http.Client
	limiter      *rate.Limiter
}

// New creates a client. RatePerSecond caps outbound model calls for the
// whole process; zero disables the cap.
func New(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Client{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		http:         &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(limit, 1),
	}
}

// Parse asks the model for the strict-JSON NLU result for one utterance.
func (c *Client) Parse(ctx context.Context, req ParseRequest) (ParseResult, error) {
	slots := req.PrevSlots
	if slots == nil {
		slots = map[string]any{}
	}
	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return ParseResult{}, fmt.Errorf("marshal known slots: %w", err)
	}

	preferred := req.PreferredLang
	if preferred == "" {
		preferred = "auto"
	}
	prevIntent := req.PrevIntent
	if prevIntent == "" {
		prevIntent = "unknown"
	}

	user := fmt.Sprintf(
		"Previous Intent: %s\nKnown Slots (JSON): %s\nPreferred Reply Language: %s\nUser: %s\nReturn STRICT JSON matching the schema.",
		prevIntent, slotsJSON, preferred, req.Text,
	)

	raw, err := c.complete(ctx, "parse", c.systemPrompt, user, 800)
	if err != nil {
		return ParseResult{}, err
	}

	var out ParseResult
	if err := decodeLenient(raw, &out); err != nil {
		metrics.IncLLMRequest("parse", "error")
		return ParseResult{}, fmt.Errorf("unparseable NLU output: %w", err)
	}
	return out, nil
}

// OneLiner produces one short sentence in the target language, keeping
// any embedded currency amount verbatim.
func (c *Client) OneLiner(ctx context.Context, lang, english string) (string, error) {
	user := fmt.Sprintf("lang=%s\nLine: %s\nReply (one sentence only):", lang, english)
	raw, err := c.complete(ctx, "one_liner", oneLinerSystemPrompt, user, 120)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, kind, system, user string, maxTokens int) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, span := telemetry.Tracer("wa2bank/llm").Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(telemetry.LLMAttributes(kind, c.model)...)

	start := time.Now()
	defer func() { metrics.ObserveLLMRequest(kind, time.Since(start)) }()

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		TopP:        0.9,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		metrics.IncLLMRequest(kind, "error")
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		metrics.IncLLMRequest(kind, "error")
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		metrics.IncLLMRequest(kind, "error")
		return "", fmt.Errorf("llm status %d: %s", res.StatusCode, snippet(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.IncLLMRequest(kind, "error")
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		metrics.IncLLMRequest(kind, "error")
		return "", fmt.Errorf("llm response has no choices")
	}

	metrics.IncLLMRequest(kind, "success")
	return parsed.Choices[0].Message.Content, nil
}

func snippet(raw []byte) string {
	s := string(raw)
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
