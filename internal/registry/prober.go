package registry

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Prober periodically checks the liveness of every registered instance and
// updates its health flag. Probes fan out in parallel so one slow instance
// cannot delay the others; there is no backoff or circuit breaking, so a
// recovered instance is detected at most one interval late.
type Prober struct {
	registry *Registry
	client   *http.Client
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewProber creates a prober with the given cycle interval and per-probe timeout
func NewProber(reg *Registry, interval, timeout time.Duration, logger *slog.Logger) *Prober {
	return &Prober{
		registry: reg,
		client:   &http.Client{Timeout: timeout},
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run probes all instances immediately and then on every tick until the
// context is cancelled. Cancellation stops scheduling new cycles; in-flight
// probes finish within their own timeout.
func (p *Prober) Run(ctx context.Context) {
	p.logger.Info("health prober started", "interval", p.interval)

	p.ProbeAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("health prober stopped")
			return
		case <-ticker.C:
			p.ProbeAll(ctx)
		}
	}
}

// ProbeAll runs one probe cycle across every instance of every service and
// waits for all probes to complete.
func (p *Prober) ProbeAll(ctx context.Context) {
	snapshot := p.registry.Snapshot()

	var wg sync.WaitGroup
	for name, instances := range snapshot {
		for _, inst := range instances {
			wg.Add(1)
			go func(name string, inst Instance) {
				defer wg.Done()
				p.probe(ctx, name, inst)
			}(name, inst)
		}
	}
	wg.Wait()
}

// probe issues a single liveness check. Any failure, including a timeout or
// a non-2xx status, marks the instance unhealthy.
func (p *Prober) probe(ctx context.Context, name string, inst Instance) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	healthy := false
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, inst.URL()+"/health", nil)
	if err == nil {
		resp, doErr := p.client.Do(req)
		if doErr == nil {
			healthy = resp.StatusCode >= 200 && resp.StatusCode < 300
			resp.Body.Close()
		}
	}

	if !healthy {
		p.logger.Warn("instance unhealthy", "service", name, "host", inst.Host, "port", inst.Port)
	}
	p.registry.MarkHealth(name, inst.Host, inst.Port, healthy, time.Now())
}
