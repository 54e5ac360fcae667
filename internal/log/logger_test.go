// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Configure is once-only, so all tests share one sink.
var logSink bytes.Buffer

func TestMain(m *testing.M) {
	Configure(Config{Level: "debug", Output: &logSink, Service: "wa2bank-test", Version: "v0.0.1"})
	os.Exit(m.Run())
}

func lastEntry(t *testing.T) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(logSink.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestComponentLogging(t *testing.T) {
	l := WithComponent("dialog")
	l.Info().Str(FieldIntent, "transfer").Msg("turn parsed")

	entry := lastEntry(t)
	assert.Equal(t, "wa2bank-test", entry["service"])
	assert.Equal(t, "v0.0.1", entry["version"])
	assert.Equal(t, "dialog", entry["component"])
	assert.Equal(t, "transfer", entry["intent"])
	assert.Equal(t, "turn parsed", entry["message"])
}

func TestContextCorrelation(t *testing.T) {
	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithTurnID(ctx, "turn-1")
	ctx = ContextWithUserKey(ctx, "2348012345678")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "turn-1", TurnIDFromContext(ctx))
	assert.Equal(t, "2348012345678", UserKeyFromContext(ctx))

	l := WithContext(ctx, Base())
	l.Info().Msg("correlated")

	entry := lastEntry(t)
	assert.Equal(t, "req-1", entry[FieldRequestID])
	assert.Equal(t, "turn-1", entry[FieldTurnID])
	assert.Equal(t, "2348012345678", entry[FieldUserKey])
}

func TestWithComponentFromContext(t *testing.T) {
	ctx := ContextWithTurnID(context.Background(), "turn-9")
	l := WithComponentFromContext(ctx, "banking")
	l.Info().Msg("executing")

	entry := lastEntry(t)
	assert.Equal(t, "banking", entry["component"])
	assert.Equal(t, "turn-9", entry[FieldTurnID])
}

func TestEmptyContextAddsNothing(t *testing.T) {
	base := Base()
	same := WithContext(context.Background(), base)
	// No correlation values means the logger is returned unchanged.
	assert.Equal(t, base, same)
}
