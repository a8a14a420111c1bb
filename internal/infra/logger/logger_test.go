package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerWritesJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	log.WithContext(ctx).HTTPError("PUT", "/leads/9", 500, errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http_error", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, 500.0, line["status"])
}

func TestDevelopmentLoggerIsTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("lead_debug")
	log.DatabaseError("create lead", errors.New("down"))

	out := buf.String()
	assert.Contains(t, out, "msg=lead_debug")
	assert.Contains(t, out, "operation=\"create lead\"")
}

func TestWithContextWithoutRequestIDReturnsSameLogger(t *testing.T) {
	log := NewWithWriter("production", &bytes.Buffer{})
	assert.Same(t, log, log.WithContext(context.Background()))
}
