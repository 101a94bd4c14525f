// Package gateway implements the reverse proxy that fronts the platform's
// services, routing by path prefix through the service registry.
package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/leaderboard-platform/internal/domain"
	"github.com/leaderboard-platform/internal/handler"
	"github.com/leaderboard-platform/internal/registry"
)

// routes maps inbound path prefixes to logical service names
var routes = map[string]string{
	"/api/players":      "player-service",
	"/api/scores":       "score-service",
	"/api/leaderboard":  "leaderboard-service",
	"/api/achievements": "achievement-service",
}

// hopHeaders are invalid to forward unchanged between hops
var hopHeaders = map[string]bool{
	"Host":           true,
	"Content-Length": true,
	"Connection":     true,
}

// Proxy forwards inbound requests to backend instances resolved through the
// registry. It applies no retries, load shedding, or circuit breaking; its
// only resilience mechanism is delegating instance selection to the registry.
type Proxy struct {
	registry *registry.Registry
	client   *http.Client
	logger   *slog.Logger
}

// NewProxy creates a proxy with a bounded forwarding timeout
func NewProxy(reg *registry.Registry, client *http.Client, logger *slog.Logger) *Proxy {
	return &Proxy{
		registry: reg,
		client:   client,
		logger:   logger,
	}
}

// Router creates the gateway's HTTP router
func (p *Proxy) Router() http.Handler {
	r := handler.NewRouter("api-gateway")

	r.Get("/services", p.handleServices)

	for prefix, service := range routes {
		fwd := p.forward(service)
		r.Handle(prefix, fwd)
		r.Handle(prefix+"/*", fwd)
	}

	return r
}

// handleServices returns the registry snapshot with per-instance health
func (p *Proxy) handleServices(w http.ResponseWriter, r *http.Request) {
	handler.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"services": p.registry.Snapshot(),
	})
}

// forward builds the proxy handler for one logical service
func (p *Proxy) forward(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inst, err := p.registry.Resolve(service)
		if err != nil {
			p.logger.Warn("no healthy instance", "service", service)
			handler.WriteError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		target := inst.URL() + r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
		if err != nil {
			handler.WriteError(w, http.StatusBadGateway, domain.ErrUpstreamFailure.Error())
			return
		}
		for key, values := range r.Header {
			if hopHeaders[http.CanonicalHeaderKey(key)] {
				continue
			}
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}

		resp, err := p.client.Do(req)
		if err != nil {
			p.logger.Error("downstream request failed", "service", service, "target", target, "error", err)
			handler.WriteError(w, http.StatusBadGateway, domain.ErrUpstreamFailure.Error())
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			p.logger.Error("reading downstream response failed", "service", service, "error", err)
			handler.WriteError(w, http.StatusBadGateway, domain.ErrUpstreamFailure.Error())
			return
		}

		// An empty or malformed body from a successful call must still yield
		// a well-formed envelope rather than an opaque error.
		if resp.StatusCode < 300 && (len(body) == 0 || !json.Valid(body)) {
			handler.WriteJSON(w, resp.StatusCode, handler.APIResponse{Success: true})
			return
		}

		for key, values := range resp.Header {
			if hopHeaders[http.CanonicalHeaderKey(key)] {
				continue
			}
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
		w.WriteHeader(resp.StatusCode)
		w.Write(body)
	}
}
