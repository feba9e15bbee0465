package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("order-service", &buf, slog.LevelDebug)

	log.Info("order_created", "Order created", "req-1", map[string]interface{}{
		"order_id": 7,
	})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "Order created", record["msg"])
	assert.Equal(t, "order-service", record["service"])
	assert.Equal(t, "order_created", record["action"])
	assert.Equal(t, "req-1", record["request_id"])

	details, ok := record["details"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, details["order_id"])
}

func TestLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("payment-service", &buf, slog.LevelDebug)

	log.Error("approve_failed", "Approval failed", "req-2", errors.New("boom"), nil)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	errGroup, ok := record["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boom", errGroup["msg"])
	assert.NotEmpty(t, errGroup["stack"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("svc", &buf, slog.LevelInfo)

	log.Debug("noise", "dropped", "", nil)
	assert.Zero(t, buf.Len())

	log.Error("nil_error", "no cause", "", nil, nil)
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	id := GenerateRequestID()
	assert.Len(t, id, 36)

	ctx := WithRequestID(context.Background(), id)
	assert.Equal(t, id, RequestID(ctx))
}
