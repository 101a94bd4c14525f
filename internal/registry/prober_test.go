package registry

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registerBackend(t *testing.T, reg *Registry, name string, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	reg.Register(name, host, port)
	return srv
}

func TestProbeMarksHealthy(t *testing.T) {
	reg := New()
	registerBackend(t, reg, "player-service", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	prober := NewProber(reg, time.Minute, 2*time.Second, discardLogger())
	prober.ProbeAll(context.Background())

	inst, err := reg.Resolve("player-service")
	require.NoError(t, err)
	assert.True(t, inst.Healthy)
	assert.False(t, inst.LastProbe.IsZero())
}

func TestProbeMarksUnhealthyOnErrorStatus(t *testing.T) {
	reg := New()
	registerBackend(t, reg, "player-service", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	prober := NewProber(reg, time.Minute, 2*time.Second, discardLogger())
	prober.ProbeAll(context.Background())

	_, err := reg.Resolve("player-service")
	require.Error(t, err)
}

func TestProbeMarksUnhealthyOnConnectionFailure(t *testing.T) {
	reg := New()
	// nothing listens here
	reg.Register("player-service", "localhost", 1)

	prober := NewProber(reg, time.Minute, 2*time.Second, discardLogger())
	prober.ProbeAll(context.Background())

	_, err := reg.Resolve("player-service")
	require.Error(t, err)
}

func TestProbeRecoversInstance(t *testing.T) {
	reg := New()
	var healthy atomic.Bool
	registerBackend(t, reg, "player-service", func(w http.ResponseWriter, r *http.Request) {
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	prober := NewProber(reg, time.Minute, 2*time.Second, discardLogger())

	prober.ProbeAll(context.Background())
	_, err := reg.Resolve("player-service")
	require.Error(t, err)

	healthy.Store(true)
	prober.ProbeAll(context.Background())
	_, err = reg.Resolve("player-service")
	require.NoError(t, err)
}
