package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: InfoLevel, Format: "json", Service: "telegram-bot", Output: &buf})

	log.Info("relay completed", StringField("user_id", "tg_alice"), IntField("reply_len", 42))

	entry := logLine(t, &buf)
	assert.Equal(t, "relay completed", entry["msg"])
	assert.Equal(t, "telegram-bot", entry["service"])
	assert.Equal(t, "tg_alice", entry["user_id"])
	assert.Equal(t, "42", entry["reply_len"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: WarnLevel, Format: "json", Output: &buf})

	log.Debug("dropped")
	log.Info("dropped too")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.NotZero(t, buf.Len())
}

func TestWithFieldsIsImmutable(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Config{Level: InfoLevel, Format: "json", Output: &buf})

	enriched := base.WithFields(StringField("chat_id", "99"))

	base.Info("plain")
	entry := logLine(t, &buf)
	_, hasChatID := entry["chat_id"]
	assert.False(t, hasChatID)

	buf.Reset()
	enriched.Info("enriched")
	entry = logLine(t, &buf)
	assert.Equal(t, "99", entry["chat_id"])
}

func TestWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: InfoLevel, Format: "json", Output: &buf})

	log.WithCorrelationID("abc-123").Info("traced")

	entry := logLine(t, &buf)
	assert.Equal(t, "abc-123", entry[CorrelationIDFieldKey])
}

func TestEnsureCorrelationID(t *testing.T) {
	t.Run("generates when missing", func(t *testing.T) {
		ctx, id := EnsureCorrelationID(context.Background())
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, GetCorrelationIDFromContext(ctx))
	})

	t.Run("reuses existing", func(t *testing.T) {
		ctx := WithCorrelationIDContext(context.Background(), "existing-id")
		_, id := EnsureCorrelationID(ctx)
		assert.Equal(t, "existing-id", id)
	})
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(Config{Level: InfoLevel, Format: "json", Output: &buf})

	handler := log.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Correlation ID must be visible to the wrapped handler
		assert.NotEmpty(t, GetCorrelationIDFromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	entry := logLine(t, &buf)
	assert.Equal(t, "GET", entry["http_method"])
	assert.Equal(t, "/healthz", entry["http_path"])
	assert.Equal(t, "418", entry["http_status"])
}
