// SPDX-License-Identifier: MIT

// Package bankdir caches the counterparty bank directory and resolves
// free-text bank references to directory records.
package bankdir

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/flkbot/wa2bank/internal/finlake"
	xglog "github.com/flkbot/wa2bank/internal/log"
	"github.com/flkbot/wa2bank/internal/metrics"
)

// FetchFunc retrieves the full bank directory from the banking API.
type FetchFunc func(ctx context.Context, transactionPIN string) ([]finlake.Bank, error)

// Match is a resolved destination bank.
type Match struct {
	Code string
	Name string
}

// Cache holds the bank directory for a fixed TTL. A failed refresh
// caches an empty directory for the window so callers degrade to the
// internal-transfer path instead of failing.
type Cache struct {
	mu        sync.RWMutex
	banks     []finlake.Bank
	fetchedAt time.Time

	ttl   time.Duration
	fetch FetchFunc
	now   func() time.Time
}

// New creates a directory cache refreshed at most once per ttl.
func New(fetch FetchFunc, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{ttl: ttl, fetch: fetch, now: time.Now}
}

func (c *Cache) load(ctx context.Context, transactionPIN string) []finlake.Bank {
	c.mu.RLock()
	banks, fetchedAt := c.banks, c.fetchedAt
	c.mu.RUnlock()

	if !fetchedAt.IsZero() && c.now().Sub(fetchedAt) < c.ttl {
		return banks
	}

	fetched, err := c.fetch(ctx, transactionPIN)
	if err != nil {
		l := xglog.WithComponentFromContext(ctx, "bankdir")
		l.Warn().
			Err(err).
			Str("event", "bankdir.refresh_failed").
			Msg("bank directory refresh failed, caching empty directory")
		metrics.IncBankDirectoryRefresh(false)
		fetched = nil
	} else {
		metrics.IncBankDirectoryRefresh(true)
	}

	// Last writer wins under concurrent refresh.
	c.mu.Lock()
	c.banks = fetched
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return fetched
}

// Resolve matches free text against the directory. Exact matches (full
// name, short name, code, space-stripped names; case-insensitive) win
// over loose matches (substring or prefix of either name).
func (c *Cache) Resolve(ctx context.Context, text, transactionPIN string) (Match, bool) {
	query := strings.ToUpper(strings.TrimSpace(text))
	if query == "" {
		return Match{}, false
	}

	banks := c.load(ctx, transactionPIN)

	for _, b := range banks {
		name := strings.ToUpper(b.BankName)
		short := strings.ToUpper(b.BankShortName)
		code := strings.ToUpper(b.BankCode)
		if query == name || query == short || query == code ||
			query == strings.ReplaceAll(short, " ", "") ||
			query == strings.ReplaceAll(name, " ", "") {
			return match(b), true
		}
	}
	for _, b := range banks {
		name := strings.ToUpper(b.BankName)
		short := strings.ToUpper(b.BankShortName)
		if (name != "" && strings.Contains(name, query)) ||
			(short != "" && strings.Contains(short, query)) ||
			strings.HasPrefix(name, query) || strings.HasPrefix(short, query) {
			return match(b), true
		}
	}
	return Match{}, false
}

// IsKnownName reports whether text equals a cached bank name, short name
// or code (case-insensitive). It never triggers a refresh; an unfilled
// cache simply reports false.
func (c *Cache) IsKnownName(text string) bool {
	query := strings.ToUpper(strings.TrimSpace(text))
	if query == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.banks {
		if query == strings.ToUpper(b.BankName) ||
			query == strings.ToUpper(b.BankShortName) ||
			query == strings.ToUpper(b.BankCode) {
			return true
		}
	}
	return false
}

func match(b finlake.Bank) Match {
	name := b.BankName
	if name == "" {
		name = b.BankShortName
	}
	if name == "" {
		name = b.BankCode
	}
	return Match{Code: strings.ToUpper(b.BankCode), Name: name}
}
