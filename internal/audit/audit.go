// SPDX-License-Identifier: MIT

// Package audit keeps a local fulfillment trail in an embedded sqlite
// database. The trail is best-effort: a write failure is logged and the
// dialogue carries on.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/flkbot/wa2bank/internal/dialog"
	xglog "github.com/flkbot/wa2bank/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS fulfillments (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id    TEXT NOT NULL,
	user_key   TEXT NOT NULL,
	intent     TEXT NOT NULL,
	ok         INTEGER NOT NULL,
	reference  TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fulfillments_user ON fulfillments(user_key, created_at);
`

// Store is a sqlite-backed fulfillment trail.
type Store struct {
	db *sql.DB
}

// Open creates or opens the audit database at path and applies the
// schema. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordFulfillment appends one fulfillment attempt to the trail.
func (s *Store) RecordFulfillment(ctx context.Context, rec dialog.FulfillmentRecord) {
	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fulfillments (turn_id, user_key, intent, ok, reference, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TurnID, rec.UserKey, rec.Intent, boolToInt(rec.OK), rec.Reference, rec.Err,
		at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		l := xglog.WithComponentFromContext(ctx, "audit")
		l.Error().
			Err(err).
			Str(xglog.FieldIntent, rec.Intent).
			Msg("audit write failed")
	}
}

// Entry is one row read back from the trail.
type Entry struct {
	TurnID    string
	UserKey   string
	Intent    string
	OK        bool
	Reference string
	Err       string
	CreatedAt time.Time
}

// RecentByUser returns the newest entries for a user, most recent first.
func (s *Store) RecentByUser(ctx context.Context, userKey string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, user_key, intent, ok, reference, error, created_at
		 FROM fulfillments WHERE user_key = ? ORDER BY id DESC LIMIT ?`,
		userKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ok int
		var created string
		if err := rows.Scan(&e.TurnID, &e.UserKey, &e.Intent, &ok, &e.Reference, &e.Err, &created); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.OK = ok != 0
		if ts, perr := time.Parse(time.RFC3339, created); perr == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
