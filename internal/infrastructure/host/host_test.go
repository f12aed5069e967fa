package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(WebhookConfig{}, nil))
	assert.IsType(t, &Webhook{}, New(WebhookConfig{CloseURL: "http://host/close"}, nil))
}

func TestWebhook(t *testing.T) {
	t.Run("posts events to the configured urls", func(t *testing.T) {
		var (
			mu     sync.Mutex
			events []map[string]string
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			payload["path"] = r.URL.Path
			mu.Lock()
			events = append(events, payload)
			mu.Unlock()
		}))
		t.Cleanup(server.Close)

		h := NewWebhook(WebhookConfig{ExpandURL: server.URL + "/expand", CloseURL: server.URL + "/close"}, nil)
		h.Expand(context.Background())
		h.Close(context.Background(), "1001")

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, events, 2)
		assert.Equal(t, map[string]string{"event": "expand", "path": "/expand"}, events[0])
		assert.Equal(t, map[string]string{"event": "close", "orderId": "1001", "path": "/close"}, events[1])
	})

	t.Run("failures are swallowed and logged at debug", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		core, logs := observer.New(zapcore.DebugLevel)
		h := NewWebhook(WebhookConfig{CloseURL: server.URL}, zap.New(core))

		h.Close(context.Background(), "1")

		entries := logs.FilterMessage("Host callback failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	})

	t.Run("unreachable host returns within the timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(server.Close)

		h := NewWebhook(WebhookConfig{ExpandURL: server.URL, Timeout: 50 * time.Millisecond}, nil)

		start := time.Now()
		h.Expand(context.Background())
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("unset url is skipped", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		h := NewWebhook(WebhookConfig{CloseURL: "http://127.0.0.1:1"}, zap.New(core))
		h.Expand(context.Background())
		assert.Zero(t, logs.Len())
	})
}
