package posthog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Capture(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/capture/", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		_, _ = w.Write([]byte(`{"status": 1}`))
	}))
	defer server.Close()

	c := NewClient("phc_test", server.URL+"/", nil)
	err := c.Capture(context.Background(), Event{
		Name:       "page_view",
		DistinctID: "visitor-1",
		Properties: map[string]any{"path": "/services"},
		Timestamp:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "phc_test", got["api_key"])
	assert.Equal(t, "page_view", got["event"])
	assert.Equal(t, "visitor-1", got["distinct_id"])
	assert.Equal(t, "2026-03-01T10:00:00Z", got["timestamp"])
	assert.Equal(t, map[string]any{"path": "/services"}, got["properties"])
}

func TestClient_CaptureErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := NewClient("phc_test", server.URL, nil).Capture(context.Background(), Event{Name: "x", DistinctID: "y"})
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": 0}`))
		}))
		defer server.Close()

		err := NewClient("phc_test", server.URL, nil).Capture(context.Background(), Event{Name: "x", DistinctID: "y"})
		assert.ErrorContains(t, err, "rejected")
	})
}

func TestClient_DisabledWithoutKey(t *testing.T) {
	c := NewClient("", "", nil)
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Capture(context.Background(), Event{Name: "page_view"}))

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}
