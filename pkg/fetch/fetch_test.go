package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docnorm/pkg/failure"
)

func kindOf(t *testing.T, err error) failure.Kind {
	t.Helper()
	require.Error(t, err)
	return failure.KindOf(err, "")
}

func TestGet_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(2*time.Second, zerolog.Nop())
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", body)
	assert.Equal(t, "docnorm/1.0", gotUA)
}

func TestGet_NotFoundIsFetchError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(2*time.Second, zerolog.Nop())
	_, err := c.Get(context.Background(), srv.URL)
	assert.Equal(t, failure.KindFetch, kindOf(t, err))
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1, calls, "no retry expected")
}

func TestGet_ServerErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(2*time.Second, zerolog.Nop())
	_, err := c.Get(context.Background(), srv.URL)
	assert.Equal(t, failure.KindFetch, kindOf(t, err))
	assert.Equal(t, 1, calls)
}

func TestGet_InvalidURL(t *testing.T) {
	c := NewClient(time.Second, zerolog.Nop())
	for _, u := range []string{"", "not a url", "ftp://example.com/file", "file:///etc/passwd", "http://"} {
		_, err := c.Get(context.Background(), u)
		assert.Equal(t, failure.KindFetch, kindOf(t, err), "url %q", u)
	}
}

func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(50*time.Millisecond, zerolog.Nop())
	_, err := c.Get(context.Background(), srv.URL)
	assert.Equal(t, failure.KindTimeout, kindOf(t, err))
}

func TestGet_MaxBodyBytes(t *testing.T) {
	page := "<html><body><p>first</p><p>second</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := NewClient(time.Second, zerolog.Nop())

	c.MaxBodyBytes = int64(len(page))
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, page, body)

	c.MaxBodyBytes = 30
	body, err = c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Empty(t, body)
	assert.Equal(t, failure.KindFetch, kindOf(t, err))
	assert.Contains(t, err.Error(), "response body too large")
}
