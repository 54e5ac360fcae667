// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/flkbot/wa2bank/internal/config"
	"github.com/flkbot/wa2bank/internal/dialog"
)

// Badger stores sessions in an embedded badger database, for
// single-node deployments without a redis.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadger opens (or creates) the badger store at cfg.BadgerDir.
func NewBadger(cfg config.SessionConfig) (*Badger, error) {
	opts := badger.DefaultOptions(cfg.BadgerDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db, ttl: cfg.TTL}, nil
}

// NewBadgerInMemory opens an in-memory badger instance, for tests.
func NewBadgerInMemory(ttl time.Duration) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Badger{db: db, ttl: ttl}, nil
}

// Load returns the stored session or a fresh idle shell when absent.
func (s *Badger) Load(_ context.Context, userKey string) (dialog.Session, error) {
	var sess dialog.Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey(userKey)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return dialog.NewIdleSession(userKey, ""), nil
	}
	if err != nil {
		return dialog.Session{}, fmt.Errorf("badger get session: %w", err)
	}
	return sess, nil
}

// Save writes the session with the store TTL.
func (s *Badger) Save(_ context.Context, sess dialog.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionKey(sess.UserKey)), raw).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// Delete removes the stored session.
func (s *Badger) Delete(_ context.Context, userKey string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKey(userKey)))
	})
}

// Close flushes and closes the database.
func (s *Badger) Close() error {
	return s.db.Close()
}
