package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"f1databridge/pkg/cache"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/ok", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "f1databridge-test", req.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.HandleFunc("/missing", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(hits, 1)
		http.Error(w, `{"detail":"No results found."}`, http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetUsesCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	store, err := cache.Open(filepath.Join(t.TempDir(), "http_cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c := NewClient(Options{Store: store, TTL: time.Hour, UserAgent: "f1databridge-test"})

	for i := 0; i < 3; i++ {
		body, err := c.Get(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetWithoutCache(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	c := NewClient(Options{UserAgent: "f1databridge-test", Rate: 100})
	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL+"/ok")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetStatusError(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	store, err := cache.Open(filepath.Join(t.TempDir(), "http_cache.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c := NewClient(Options{Store: store, UserAgent: "f1databridge-test"})

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL+"/missing")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "404")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "error responses are not cached")
}

func TestGetCancelledContext(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Options{UserAgent: "f1databridge-test", Rate: 1})
	_, err := c.Get(ctx, srv.URL+"/ok")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}
