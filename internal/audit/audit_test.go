// SPDX-License-Identifier: MIT

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flkbot/wa2bank/internal/dialog"
)

func TestRecordAndReadBack(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	s.RecordFulfillment(ctx, dialog.FulfillmentRecord{
		TurnID:    "t-1",
		UserKey:   "2348012345678",
		Intent:    "transfer",
		OK:        true,
		Reference: "FLK-1",
		At:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	s.RecordFulfillment(ctx, dialog.FulfillmentRecord{
		TurnID:  "t-2",
		UserKey: "2348012345678",
		Intent:  "check_balance",
		OK:      false,
		Err:     "the banking service is unavailable right now",
	})

	entries, err := s.RecentByUser(ctx, "2348012345678", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first.
	assert.Equal(t, "t-2", entries[0].TurnID)
	assert.False(t, entries[0].OK)
	assert.Equal(t, "check_balance", entries[0].Intent)

	assert.Equal(t, "t-1", entries[1].TurnID)
	assert.True(t, entries[1].OK)
	assert.Equal(t, "FLK-1", entries[1].Reference)
	assert.Equal(t, 2025, entries[1].CreatedAt.Year())
}

func TestRecentByUserScopesToUser(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	s.RecordFulfillment(ctx, dialog.FulfillmentRecord{TurnID: "a", UserKey: "111", Intent: "transfer", OK: true})
	s.RecordFulfillment(ctx, dialog.FulfillmentRecord{TurnID: "b", UserKey: "222", Intent: "transfer", OK: true})

	entries, err := s.RecentByUser(ctx, "111", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].TurnID)
}
