package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/rsolver/pkg/cache"
	rerrors "github.com/matzehuels/rsolver/pkg/errors"
	"github.com/matzehuels/rsolver/pkg/httputil"
	"github.com/matzehuels/rsolver/pkg/metrics"
	"github.com/matzehuels/rsolver/pkg/observability"
	"github.com/matzehuels/rsolver/pkg/pipeline"
)

const bridgeJSON = `{
  "name": "bridge",
  "terminals": [0, 3],
  "resistors": [
    {"r": 1, "a": 0, "b": 1},
    {"r": 1, "a": 0, "b": 2},
    {"r": 1, "a": 1, "b": 2},
    {"r": 1, "a": 3, "b": 1},
    {"r": 1, "a": 3, "b": 2}
  ]
}`

const k24JSON = `{
  "terminals": [0, 1, 2, 3],
  "resistors": [
    {"r": 1, "a": 10, "b": 0}, {"r": 1, "a": 10, "b": 1}, {"r": 1, "a": 10, "b": 2}, {"r": 1, "a": 10, "b": 3},
    {"r": 1, "a": 11, "b": 0}, {"r": 1, "a": 11, "b": 1}, {"r": 1, "a": 11, "b": 2}, {"r": 1, "a": 11, "b": 3}
  ]
}`

func newTestServer(t *testing.T, cfg Config) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewRedisCache(mr.Addr())
	runner := pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, "api:"), log.New(io.Discard))
	t.Cleanup(func() { _ = runner.Close() })
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return New(runner, cfg).Handler(), mr
}

func post(t *testing.T, h http.Handler, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t, Config{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status": "ok"`)
	assert.Contains(t, rec.Body.String(), `"version": "dev"`)
}

func TestSolve(t *testing.T) {
	h, mr := newTestServer(t, Config{})

	rec := post(t, h, "/v1/solve?verify=true", "application/json", bridgeJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err, "id should be a UUID")
	assert.Equal(t, rec.Header().Get(httputil.HeaderRequestID), resp.ID)
	assert.Equal(t, "bridge", resp.Name)
	assert.Equal(t, []int{0, 3}, resp.Terminals)
	require.Len(t, resp.Pairs, 1)
	assert.InDelta(t, 1.0, resp.Pairs[0].R, 1e-9)
	assert.True(t, resp.Verified)
	assert.False(t, resp.Cached)
	assert.Nil(t, resp.Solved)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "rsolver:api:solve:"), keys[0])

	rec = post(t, h, "/v1/solve?verify=true&network=true", "application/json", bridgeJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	require.NotNil(t, resp.Solved)
	assert.Len(t, resp.Solved.Resistors, 1)
}

func TestSolve_Formats(t *testing.T) {
	h, _ := newTestServer(t, Config{})

	toml := "terminals = [0, 2]\n[[resistors]]\nr = 3.0\na = 0\nb = 1\n[[resistors]]\nr = 5.0\na = 1\nb = 2\n"
	rec := post(t, h, "/v1/solve", "application/toml; charset=utf-8", toml)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"r": 8`)

	yaml := "terminals: [0, 1]\nresistors:\n  - {r: 4, a: 0, b: 1}\n  - {r: 4, a: 0, b: 1}\n"
	rec = post(t, h, "/v1/solve", "application/yaml", yaml)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"r": 2`)
}

func TestSolve_Errors(t *testing.T) {
	h, _ := newTestServer(t, Config{})

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
		code        rerrors.Code
	}{
		{"invalid netlist", "/v1/solve", "", `{"resistors": [{"r": 0, "a": 0, "b": 1}]}`, http.StatusBadRequest, rerrors.ErrCodeInvalidNetlist},
		{"malformed json", "/v1/solve", "", `{"resistors": [`, http.StatusBadRequest, rerrors.ErrCodeInvalidNetlist},
		{"not reducible", "/v1/solve", "", k24JSON, http.StatusUnprocessableEntity, rerrors.ErrCodeNotReducible},
		{"bad content type", "/v1/solve", "text/plain", bridgeJSON, http.StatusUnsupportedMediaType, rerrors.ErrCodeInvalidFormat},
		{"bad seed", "/v1/solve?random=true&seed=-1", "", bridgeJSON, http.StatusBadRequest, rerrors.ErrCodeInvalidInput},
		{"bad flag", "/v1/solve?verify=maybe", "", bridgeJSON, http.StatusBadRequest, rerrors.ErrCodeInvalidInput},
		{"bad name", "/v1/solve", "", `{"name": "../etc", "resistors": [{"r": 1, "a": 0, "b": 1}]}`, http.StatusBadRequest, rerrors.ErrCodeInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestSolve_Timeout(t *testing.T) {
	h, _ := newTestServer(t, Config{Timeout: time.Nanosecond})
	rec := post(t, h, "/v1/solve?refresh=true", "", bridgeJSON)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code, rec.Body.String())
	assert.Equal(t, rerrors.ErrCodeTimeout, decodeError(t, rec).Code)
}

func TestSolve_CacheUnavailable(t *testing.T) {
	h, mr := newTestServer(t, Config{})
	mr.Close()

	// A dead cache degrades to uncached solving.
	rec := post(t, h, "/v1/solve", "", bridgeJSON)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRender(t *testing.T) {
	h, _ := newTestServer(t, Config{})

	rec := post(t, h, "/v1/render?format=dot&solved=true", "", bridgeJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "graph G {")
	assert.Contains(t, rec.Body.String(), "bridge (solved)")

	rec = post(t, h, "/v1/render?format=pdf", "", bridgeJSON)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetrics(t *testing.T) {
	m := metrics.NewRegistry()
	observability.SetHTTPHooks(m)
	observability.SetSolveHooks(m)
	t.Cleanup(observability.Reset)

	h, _ := newTestServer(t, Config{Metrics: m.Handler()})
	post(t, h, "/v1/solve", "", bridgeJSON)
	post(t, h, "/v1/solve", "", k24JSON)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `rsolver_http_requests_total{method="POST",route="/v1/solve",status="200"} 1`)
	assert.Contains(t, body, `rsolver_http_requests_total{method="POST",route="/v1/solve",status="422"} 1`)
	assert.Contains(t, body, `rsolver_solves_total{status="error"} 1`)
}

func TestRun_Shutdown(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	srv := New(runner, Config{Addr: "127.0.0.1:0", Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}
