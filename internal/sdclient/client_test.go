package sdclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(Txt2ImgPath, h)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerate_SendsFixedDefaults(t *testing.T) {
	var got map[string]any
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images":["a","b","c","d"]}`))
	})

	c := New(ts.URL+"/", WithTimeout(2*time.Second))
	res, err := c.Generate(context.Background(), "a red fox", 4)
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":["a","b","c","d"]}`, res.RawBody)
	assert.GreaterOrEqual(t, res.ElapsedMillis, int64(0))

	assert.Equal(t, map[string]any{
		"prompt":        "a red fox",
		"steps":         float64(20),
		"sampler_index": "Euler a",
		"cfg_scale":     float64(7),
		"seed":          float64(-1),
		"batch_size":    float64(4),
	}, got)
}

func TestGenerate_HTTPStatusError(t *testing.T) {
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cuda out of memory", http.StatusInternalServerError)
	})

	c := New(ts.URL, WithTimeout(2*time.Second))
	res, err := c.Generate(context.Background(), "x", 4)
	require.Error(t, err)
	assert.True(t, IsHTTPStatus(err))
	assert.False(t, IsTimeout(err))

	var he *HTTPStatusError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusInternalServerError, he.StatusCode)
	assert.Equal(t, "Internal Server Error", he.Status)
	assert.Contains(t, he.Body, "cuda out of memory")
	assert.Empty(t, res.RawBody)
}

func TestGenerate_TimeoutDiscardsLateResponse(t *testing.T) {
	var served atomic.Int32
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(2 * time.Second):
			served.Add(1)
			_, _ = w.Write([]byte(`{"images":[]}`))
		}
	})

	timeout := 50 * time.Millisecond
	c := New(ts.URL, WithTimeout(timeout))
	start := time.Now()
	res, err := c.Generate(context.Background(), "slow", 4)
	took := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.False(t, IsHTTPStatus(err))
	var te *TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, timeout, te.After)

	assert.Empty(t, res.RawBody)
	assert.GreaterOrEqual(t, res.ElapsedMillis, timeout.Milliseconds())
	assert.Less(t, took, time.Second)
	assert.Zero(t, served.Load())
}

func TestGenerate_RejectsNonPositiveCount(t *testing.T) {
	var hits atomic.Int32
	ts := newBackend(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	c := New(ts.URL)
	_, err := c.Generate(context.Background(), "x", 0)
	require.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestGenerate_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url, WithTimeout(2*time.Second))
	_, err := c.Generate(context.Background(), "x", 1)
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
	assert.False(t, IsHTTPStatus(err))
}

func TestNew_Defaults(t *testing.T) {
	c := New("http://localhost:7861/")
	assert.Equal(t, "http://localhost:7861", c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.Equal(t, 60*time.Second, c.Timeout())
}
