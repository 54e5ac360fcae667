// SPDX-License-Identifier: MIT

// Package store provides TTL-backed session persistence for the dialog
// controller with redis, badger and in-memory backends.
package store

import (
	"fmt"

	"github.com/flkbot/wa2bank/internal/config"
	"github.com/flkbot/wa2bank/internal/dialog"
)

const keyPrefix = "wa2bank:session:"

// New creates the configured session store. The returned closer must be
// called on shutdown; for the memory backend it is a no-op.
func New(cfg config.SessionConfig) (dialog.Store, func() error, error) {
	switch cfg.Backend {
	case "redis":
		s := NewRedis(cfg)
		return s, s.Close, nil
	case "badger":
		s, err := NewBadger(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger session store: %w", err)
		}
		return s, s.Close, nil
	case "memory":
		s := NewMemory(cfg.TTL)
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func sessionKey(userKey string) string {
	return keyPrefix + userKey
}
