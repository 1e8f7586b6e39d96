package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-critique-crawler/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><div class="se-main-container">해설이 다르다</div><span id="ua">` + r.UserAgent() + `</span></body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("late"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_OK(t *testing.T) {
	srv := newTestServer(t)
	f := New(config.FetcherConfig{UserAgent: "critique-test"}, nil)

	body, err := f.Fetch(context.Background(), srv.URL+"/post")

	require.NoError(t, err)
	assert.Contains(t, body, "해설이 다르다")
	assert.Contains(t, body, "critique-test")
}

func TestFetch_Failures(t *testing.T) {
	srv := newTestServer(t)
	f := New(config.FetcherConfig{Timeout: 100 * time.Millisecond}, nil)

	tests := []struct {
		name string
		path string
	}{
		{name: "not found", path: "/missing"},
		{name: "empty body", path: "/empty"},
		{name: "timeout", path: "/slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), srv.URL+tt.path)
			assert.Error(t, err)
		})
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	srv := newTestServer(t)
	f := New(config.FetcherConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, srv.URL+"/post")
	assert.Error(t, err)
}

func TestFetch_EmptyBodySentinel(t *testing.T) {
	srv := newTestServer(t)
	f := New(config.FetcherConfig{}, nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/empty")
	assert.ErrorIs(t, err, ErrEmptyBody)
}
