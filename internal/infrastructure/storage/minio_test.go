package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-scheduler/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MinIOClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewMinIOClient(&config.ArchiveConfig{
		Endpoint:        strings.TrimPrefix(ts.URL, "http://"),
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		BucketName:      "archive",
		Region:          "us-east-1",
	})
	require.NoError(t, err)
	return client
}

func TestCallObjectName(t *testing.T) {
	assert.Equal(t, "calls/abc-123.json", CallObjectName("abc-123"))
	assert.Equal(t, "calls/a%2Fb.json", CallObjectName("a/b"))
}

func TestArchiveCall(t *testing.T) {
	var gotPath, gotBody, gotType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	})

	err := client.ArchiveCall(context.Background(), "call-1", []byte(`{"call_id":"call-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "/archive/calls/call-1.json", gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Contains(t, gotBody, `{"call_id":"call-1"}`)
}

func TestArchiveCall_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.ArchiveCall(context.Background(), "call-1", []byte(`{}`))
	assert.Error(t, err)
}

func TestCallURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	u, err := client.CallURL(context.Background(), "call-1", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, u, "/archive/calls/call-1.json")
	assert.Contains(t, u, "X-Amz-Signature")
}
