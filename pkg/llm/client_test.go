package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-scheduler/pkg/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.LLMConfig{
		BaseURL:   url,
		APIKey:    "test-key",
		Model:     "gpt-test",
		MaxTokens: 32,
		Timeout:   time.Second,
	})
}

func TestComplete_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-test", payload["model"])
		assert.Contains(t, payload, "temperature")
		assert.EqualValues(t, 0, payload["temperature"])
		assert.EqualValues(t, 32, payload["max_tokens"])
		assert.Len(t, payload["messages"], 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"content": "2030/03/14, 15:00"}}},
		})
	}))
	defer ts.Close()

	out, err := newTestClient(ts.URL).Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "2030/03/14, 15:00", out)
}

func TestComplete_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Complete(context.Background(), "s", "u")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}
