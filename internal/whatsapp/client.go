// SPDX-License-Identifier: MIT

// Package whatsapp sends outbound messages via the WhatsApp Cloud API
// and extracts inbound text messages from webhook payloads.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxTextLength is the Cloud API text body limit.
const maxTextLength = 4000

// Client posts messages to the Graph API.
type Client struct {
	baseURL       string
	version       string
	phoneNumberID string
	token         string
	http          *http.Client
}

// Config carries Graph API settings.
type Config struct {
	BaseURL         string // defaults to https://graph.facebook.com
	GraphAPIVersion string
	PhoneNumberID   string
	Token           string
}

// New creates an outbound message client.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://graph.facebook.com"
	}
	return &Client{
		baseURL:       base,
		version:       cfg.GraphAPIVersion,
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.Token,
		http:          &http.Client{Timeout: 30 * time.Second},
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers one text message, truncating the body to the
// transport limit. Best effort: callers log failures, nothing retries.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	runes := []rune(body)
	if len(runes) > maxTextLength {
		body = string(runes[:maxTextLength])
	}

	payload, err := json.Marshal(textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("graph API status %d: %s", res.StatusCode, raw)
	}
	return nil
}
