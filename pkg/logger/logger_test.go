package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_EmitsJSONWithServiceName(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("login-service", "info", &buf)

	l.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "login-service", entry["service"])
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("login-service", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestNewWithWriter_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("login-service", "verbose", &buf)

	l.Debug("dropped")
	assert.Zero(t, buf.Len())

	l.Info("kept")
	assert.NotZero(t, buf.Len())
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = WithCorrelationID(ctx, "corr-42")
	assert.Equal(t, "corr-42", CorrelationIDFromContext(ctx))
}

func TestSessionIDRoundTrip(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess-1")
	assert.Equal(t, "sess-1", SessionIDFromContext(ctx))
}

func TestWithContext_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("login-service", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-7")
	ctx = WithSessionID(ctx, "sess-7")

	WithContext(ctx, l).Info("enriched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-7", entry["correlation_id"])
	assert.Equal(t, "sess-7", entry["session_id"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestNewContextAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("login-service", "info", &buf)

	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}
