// Package collector implements the background metric collection loop for
// hostwatch. On a fixed cadence it samples host CPU and memory via gopsutil,
// appends the reading to the sample store, and evaluates it against the
// threshold registry, appending one alert per breached kind per cycle.
//
// A sustained breach deliberately produces one alert on every cycle; there is
// no debouncing or hysteresis. Sampling and persistence failures are logged
// and the loop proceeds on the next tick — a monitoring agent must stay alive.
package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"hostwatch/internal/models"
	"hostwatch/internal/store"
)

// Collector runs the sampling loop. Stopped → Running on Start,
// Running → Stopped on Stop; there are no other states.
type Collector struct {
	samples    *store.SampleStore
	alerts     *store.AlertStore
	thresholds *Registry
	sampler    Sampler
	interval   time.Duration
	maxSamples int

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a Collector. maxSamples enables count-bounded retention on the
// sample store; 0 keeps everything.
func New(samples *store.SampleStore, alerts *store.AlertStore, thresholds *Registry,
	sampler Sampler, interval time.Duration, maxSamples int) *Collector {
	return &Collector{
		samples:    samples,
		alerts:     alerts,
		thresholds: thresholds,
		sampler:    sampler,
		interval:   interval,
		maxSamples: maxSamples,
	}
}

// Start launches the background loop. Calling Start on a running collector is
// a no-op.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go c.loop(ctx)
	log.Printf("[collector] started, interval=%s", c.interval)
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish.
// Stopping a stopped collector is a no-op.
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done
	log.Printf("[collector] stopped")
}

// Running reports whether the loop is active.
func (c *Collector) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Collector) loop(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCycle(ctx)
		}
	}
}

// runCycle performs one sample/evaluate pass. Every failure path logs and
// returns; the next tick retries.
func (c *Collector) runCycle(ctx context.Context) {
	// Bound the sampling call so a stalled host interface can never block
	// subsequent cycles.
	sampleCtx, cancel := context.WithTimeout(ctx, c.interval)
	reading, err := c.sampler.Sample(sampleCtx)
	cancel()
	if err != nil {
		log.Printf("[collector] sample error: %v", err)
		return
	}

	ts := float64(time.Now().UnixNano()) / float64(time.Second)

	sample := &models.Sample{
		Timestamp:     ts,
		CPUPercent:    reading.CPUPercent,
		MemoryPercent: reading.MemoryPercent,
	}
	if err := c.samples.Append(sample); err != nil {
		log.Printf("[collector] sample append error: %v", err)
	}

	limits := c.thresholds.Get()
	for _, alert := range Evaluate(ts, reading, limits) {
		alert := alert
		if err := c.alerts.Append(&alert); err != nil {
			log.Printf("[collector] alert append error: %v", err)
		}
	}

	if c.maxSamples > 0 {
		if err := c.samples.Prune(c.maxSamples); err != nil {
			log.Printf("[collector] prune error: %v", err)
		}
	}
}

// Evaluate compares a reading against a threshold snapshot and returns the
// alerts to record: at most one per kind, each independent of the other.
// Thresholds are exclusive — a value exactly at the limit does not alert.
func Evaluate(ts float64, r Reading, limits Limits) []models.Alert {
	var out []models.Alert
	if r.CPUPercent > limits.CPU {
		out = append(out, models.Alert{
			Timestamp: ts,
			Kind:      models.AlertKindCPU,
			Value:     r.CPUPercent,
			Threshold: limits.CPU,
			Message:   fmt.Sprintf("CPU usage exceeded threshold: %.2f%%", r.CPUPercent),
		})
	}
	if r.MemoryPercent > limits.Memory {
		out = append(out, models.Alert{
			Timestamp: ts,
			Kind:      models.AlertKindMemory,
			Value:     r.MemoryPercent,
			Threshold: limits.Memory,
			Message:   fmt.Sprintf("Memory usage exceeded threshold: %.2f%%", r.MemoryPercent),
		})
	}
	return out
}
