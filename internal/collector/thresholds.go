package collector

import (
	"errors"
	"sync"
)

// ErrInvalidLimit is returned by Registry.Set for out-of-range values.
var ErrInvalidLimit = errors.New("threshold must be in (0, 100]")

// Limits is a consistent snapshot of the alert thresholds, in percent.
type Limits struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
}

// Registry holds the live, mutable threshold configuration. The collector
// snapshots it each evaluation cycle; the admin API replaces it atomically.
// Readers never observe a half-written pair.
type Registry struct {
	mu     sync.RWMutex
	limits Limits
}

// NewRegistry creates a Registry with the given initial limits. Values outside
// (0, 100] fall back to 80.
func NewRegistry(cpu, memory float64) *Registry {
	if !validLimit(cpu) {
		cpu = 80
	}
	if !validLimit(memory) {
		memory = 80
	}
	return &Registry{limits: Limits{CPU: cpu, Memory: memory}}
}

// Get returns a consistent snapshot of both limits.
func (r *Registry) Get() Limits {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limits
}

// Set atomically replaces both limits. Takes effect on the collector's next
// evaluation cycle; an in-flight cycle keeps its snapshot.
func (r *Registry) Set(cpu, memory float64) error {
	if !validLimit(cpu) || !validLimit(memory) {
		return ErrInvalidLimit
	}
	r.mu.Lock()
	r.limits = Limits{CPU: cpu, Memory: memory}
	r.mu.Unlock()
	return nil
}

func validLimit(v float64) bool {
	return v > 0 && v <= 100
}
