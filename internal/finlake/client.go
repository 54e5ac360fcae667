// SPDX-License-Identifier: MIT

// Package finlake is a thin client for the Finlake chatbot-controller API.
// Each helper returns a parsed response or an error; transient transport
// failures are retried with exponential backoff, envelope failures are not.
package finlake

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/flkbot/wa2bank/internal/metrics"
)

const (
	maxAttempts     = 3
	initialInterval = 600 * time.Millisecond
	maxBodySnippet  = 300
)

// Config carries the connection settings for a Client.
type Config struct {
	BaseURL          string
	AccountID        string
	Stage            string
	PhoneCountryCode string
	PhoneNumber      string
	Timeout          time.Duration
}

// Client talks to the Finlake mobility API.
type Client struct {
	base             string
	accountID        string
	stage            string
	phoneCountryCode string
	phoneNumber      string
	http             *http.Client
}

// New creates a Finlake client with the configured request timeout.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		base:             strings.TrimRight(cfg.BaseURL, "/"),
		accountID:        cfg.AccountID,
		stage:            cfg.Stage,
		phoneCountryCode: cfg.PhoneCountryCode,
		phoneNumber:      cfg.PhoneNumber,
		http:             &http.Client{Timeout: timeout},
	}
}

// Credentials is the bot credential payload required by public endpoints.
type Credentials struct {
	PhoneCountryCode string `json:"phoneCountryCode"`
	PhoneNumber      string `json:"phoneNumber"`
	RequestSignature string `json:"requestSignature"`
	TransactionPin   string `json:"transactionPin"`
}

// credentials builds the credential payload. The request signature is
// Base64 of "<unix_ts>:chatbot".
func (c *Client) credentials(transactionPIN string) Credentials {
	sig := fmt.Sprintf("%d:chatbot", time.Now().Unix())
	return Credentials{
		PhoneCountryCode: c.phoneCountryCode,
		PhoneNumber:      c.phoneNumber,
		RequestSignature: base64.StdEncoding.EncodeToString([]byte(sig)),
		TransactionPin:   transactionPIN,
	}
}

type envelope struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}

// post sends a JSON payload and decodes the response into out.
// Transient conditions (network errors, HTTP 429/5xx) are retried up to
// maxAttempts with exponential backoff; envelope errors are permanent.
func (c *Client) post(ctx context.Context, operation, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", operation, err)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = initialInterval

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		doErr := c.doPost(ctx, path, body, out)
		if doErr == nil {
			return struct{}{}, nil
		}
		if IsBusiness(doErr) || !isTransient(doErr) {
			return struct{}{}, backoff.Permanent(doErr)
		}
		return struct{}{}, doErr
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(maxAttempts))

	switch {
	case err == nil:
		metrics.IncBankRequest(operation, "success")
	case IsBusiness(err):
		metrics.IncBankRequest(operation, "business_error")
	default:
		metrics.IncBankRequest(operation, "transport_error")
		err = fmt.Errorf("finlake %s failed after %d attempts: %w", operation, maxAttempts, err)
	}
	return err
}

func (c *Client) doPost(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Account-Id", c.accountID)
	req.Header.Set("X-Flk-Stage", c.stage)

	res, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return &transportError{err: err}
	}

	switch res.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return &transientHTTPError{status: res.StatusCode, body: snippet(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("finlake non-JSON response %d: %s", res.StatusCode, snippet(raw))
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("finlake HTTP %d: %s", res.StatusCode, snippet(raw))
	}
	if env.ResponseCode != "" && env.ResponseCode != "00" {
		return &BusinessError{Code: env.ResponseCode, Message: env.ResponseMessage}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode finlake response: %w", err)
		}
	}
	return nil
}

// isTransient reports whether another attempt could succeed: retryable
// HTTP statuses and transport-level failures (timeouts, resets) qualify;
// malformed responses and non-retryable statuses do not.
func isTransient(err error) bool {
	var th *transientHTTPError
	var tr *transportError
	return errors.As(err, &th) || errors.As(err, &tr)
}

func snippet(raw []byte) string {
	s := string(raw)
	if len(s) > maxBodySnippet {
		s = s[:maxBodySnippet]
	}
	return s
}
