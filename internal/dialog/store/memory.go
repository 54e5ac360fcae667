// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sync"
	"time"

	"github.com/flkbot/wa2bank/internal/dialog"
)

type memoryEntry struct {
	sess      dialog.Session
	expiresAt time.Time
}

// Memory is a process-local session store for tests and dev runs.
// Expiry is checked lazily on Load.
type Memory struct {
	mu  sync.Mutex
	m   map[string]memoryEntry
	ttl time.Duration
	now func() time.Time
}

// NewMemory creates an in-memory store with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Memory{m: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

// Load returns the stored session, or a fresh idle shell when the key
// is absent or has expired.
func (s *Memory) Load(_ context.Context, userKey string) (dialog.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.m[userKey]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.m, userKey)
		return dialog.NewIdleSession(userKey, ""), nil
	}
	return entry.sess, nil
}

// Save stores the session and refreshes its expiry.
func (s *Memory) Save(_ context.Context, sess dialog.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.UserKey] = memoryEntry{sess: sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete removes the stored session.
func (s *Memory) Delete(_ context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userKey)
	return nil
}
