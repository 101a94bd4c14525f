package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-platform/internal/handler"
	"github.com/leaderboard-platform/internal/registry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProxy(reg *registry.Registry) *Proxy {
	return NewProxy(reg, &http.Client{Timeout: 5 * time.Second}, discardLogger())
}

func registerBackend(t *testing.T, reg *registry.Registry, name string, h http.Handler) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	reg.Register(name, host, port)
}

func decodeEnvelope(t *testing.T, body io.Reader) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestForwardPassesThroughResponse(t *testing.T) {
	reg := registry.New()
	registerBackend(t, reg, "player-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/players/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"id":42}}`))
	}))

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/42", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.True(t, resp.Success)
}

func TestForwardPreservesQueryAndBody(t *testing.T) {
	reg := registry.New()
	registerBackend(t, reg, "score-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "limit=5", r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"player_id":1,"score":100}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	}))

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/scores?limit=5",
		strings.NewReader(`{"player_id":1,"score":100}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestForwardNoHealthyInstance(t *testing.T) {
	reg := registry.New()
	reg.Register("player-service", "localhost", 8001)
	reg.MarkHealth("player-service", "localhost", 8001, false, time.Now())

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "player-service")
}

func TestForwardUpstreamFailure(t *testing.T) {
	reg := registry.New()
	// healthy in the registry but nothing listening
	reg.Register("player-service", "localhost", 1)

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.False(t, resp.Success)
}

func TestForwardWrapsEmptyBody(t *testing.T) {
	reg := registry.New()
	registerBackend(t, reg, "achievement-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/achievements", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.True(t, resp.Success)
}

func TestForwardKeepsErrorStatus(t *testing.T) {
	reg := registry.New()
	registerBackend(t, reg, "player-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"player not found"}`))
	}))

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/players/9999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.False(t, resp.Success)
	assert.Equal(t, "player not found", resp.Error)
}

func TestForwardStripsHopHeaders(t *testing.T) {
	reg := registry.New()
	registerBackend(t, reg, "player-service", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "value", r.Header.Get("X-Custom"))
		w.Write([]byte(`{"success":true}`))
	}))

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/players", nil)
	req.Header.Set("X-Custom", "value")
	req.Header.Set("Connection", "keep-alive")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServicesEndpoint(t *testing.T) {
	reg := registry.New()
	reg.Register("player-service", "localhost", 8001)

	router := newTestProxy(reg).Router()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.True(t, resp.Success)
}
