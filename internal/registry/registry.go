// Package registry implements the gateway's in-memory service directory and
// the background health prober that keeps it current.
package registry

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/leaderboard-platform/internal/domain"
)

// Instance is one backend instance of a logical service. Health flags are
// soft state: they lag reality by at most one probe interval.
type Instance struct {
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Healthy   bool      `json:"healthy"`
	LastProbe time.Time `json:"last_probe"`
}

// URL returns the instance's base URL
func (i Instance) URL() string {
	return fmt.Sprintf("http://%s:%d", i.Host, i.Port)
}

// Registry maps logical service names to their instances. It is created at
// process start, mutated only by Register and the prober's MarkHealth, and
// read concurrently by the gateway router. A name with zero healthy instances
// is a valid state; Resolve then fails explicitly.
type Registry struct {
	mu       sync.RWMutex
	services map[string][]*Instance
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		services: make(map[string][]*Instance),
	}
}

// Register adds an instance for a logical service name, replacing any
// existing entry with the same host and port. New instances start healthy;
// the first probe cycle corrects that if needed.
func (r *Registry) Register(name, host string, port int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst := &Instance{Host: host, Port: port, Healthy: true}
	for i, existing := range r.services[name] {
		if existing.Host == host && existing.Port == port {
			r.services[name][i] = inst
			return
		}
	}
	r.services[name] = append(r.services[name], inst)
}

// Resolve returns one healthy instance for the logical name, selected
// uniformly at random. It returns domain.ErrServiceUnavailable when the name
// is unknown or has no healthy instances; callers must treat that as
// "service unavailable", not retry.
func (r *Registry) Resolve(name string) (Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var healthy []*Instance
	for _, inst := range r.services[name] {
		if inst.Healthy {
			healthy = append(healthy, inst)
		}
	}
	if len(healthy) == 0 {
		return Instance{}, fmt.Errorf("%w: %s", domain.ErrServiceUnavailable, name)
	}
	return *healthy[rand.Intn(len(healthy))], nil
}

// MarkHealth updates the health flag for one instance. This is the only
// mutator available to the health prober; unknown instances are ignored.
func (r *Registry) MarkHealth(name, host string, port int, healthy bool, probedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inst := range r.services[name] {
		if inst.Host == host && inst.Port == port {
			inst.Healthy = healthy
			inst.LastProbe = probedAt
			return
		}
	}
}

// Snapshot returns a copy of the full directory, keyed by logical name
func (r *Registry) Snapshot() map[string][]Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]Instance, len(r.services))
	for name, instances := range r.services {
		copied := make([]Instance, len(instances))
		for i, inst := range instances {
			copied[i] = *inst
		}
		out[name] = copied
	}
	return out
}
