package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromContext_FallsBackToBase(t *testing.T) {
	assert.Equal(t, Log, FromContext(context.Background()))
}

func TestWithRequestID_AttachesChildLogger(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")

	assert.Equal(t, "req-123", RequestID(ctx))
	assert.NotNil(t, FromContext(ctx))
	assert.NotSame(t, Log, FromContext(ctx))
}

func TestRequestID_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", RequestID(context.Background()))
}

func TestInitializeWithWriter_TeesJSON(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	var buf bytes.Buffer
	InitializeWithWriter("production", &buf)
	Log.Info("policy stored", zap.String("policy_id", "SSST1"))
	Sync()

	line := bytes.TrimSpace(buf.Bytes())
	require.NotEmpty(t, line)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &entry))
	assert.Equal(t, "policy stored", entry["msg"])
	assert.Equal(t, "SSST1", entry["policy_id"])
	assert.Contains(t, entry, "timestamp")
}
