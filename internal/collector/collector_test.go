package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hostwatch/internal/models"
	"hostwatch/internal/store"
)

// stubSampler returns a fixed reading, or an error when failing is set.
type stubSampler struct {
	reading Reading
	failing bool
}

func (s *stubSampler) Sample(ctx context.Context) (Reading, error) {
	if s.failing {
		return Reading{}, errors.New("host interface unavailable")
	}
	return s.reading, nil
}

func newTestStores(t *testing.T) (*store.SampleStore, *store.AlertStore) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	return store.NewSampleStore(db), store.NewAlertStore(db)
}

func TestEvaluateCPUOnly(t *testing.T) {
	alerts := Evaluate(1000, Reading{CPUPercent: 92.5, MemoryPercent: 40}, Limits{CPU: 80, Memory: 80})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Kind != models.AlertKindCPU {
		t.Errorf("Kind = %q, want CPU", a.Kind)
	}
	if a.Value != 92.5 || a.Threshold != 80 {
		t.Errorf("Value/Threshold = %v/%v, want 92.5/80", a.Value, a.Threshold)
	}
	if a.Message != "CPU usage exceeded threshold: 92.50%" {
		t.Errorf("Message = %q", a.Message)
	}
}

func TestEvaluateMemoryOnly(t *testing.T) {
	alerts := Evaluate(1000, Reading{CPUPercent: 10, MemoryPercent: 95.5}, Limits{CPU: 80, Memory: 80})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Kind != models.AlertKindMemory {
		t.Errorf("Kind = %q, want Memory", alerts[0].Kind)
	}
	if alerts[0].Message != "Memory usage exceeded threshold: 95.50%" {
		t.Errorf("Message = %q", alerts[0].Message)
	}
}

func TestEvaluateBothBreached(t *testing.T) {
	alerts := Evaluate(1000, Reading{CPUPercent: 99, MemoryPercent: 99}, Limits{CPU: 80, Memory: 80})
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
}

func TestEvaluateNoBreach(t *testing.T) {
	alerts := Evaluate(1000, Reading{CPUPercent: 50, MemoryPercent: 50}, Limits{CPU: 80, Memory: 80})
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(alerts))
	}
}

func TestEvaluateLimitIsExclusive(t *testing.T) {
	// A value exactly at the limit does not alert.
	alerts := Evaluate(1000, Reading{CPUPercent: 80, MemoryPercent: 80}, Limits{CPU: 80, Memory: 80})
	if len(alerts) != 0 {
		t.Fatalf("value == limit produced %d alerts, want 0", len(alerts))
	}
}

func TestEvaluateThresholdChangeTakesEffect(t *testing.T) {
	r := Reading{CPUPercent: 60, MemoryPercent: 10}

	// 60% does not breach the default 80% limit.
	if got := Evaluate(1, r, Limits{CPU: 80, Memory: 80}); len(got) != 0 {
		t.Fatalf("expected no alert at limit 80, got %d", len(got))
	}
	// Lowering the limit below 60% makes the next cycle alert.
	if got := Evaluate(2, r, Limits{CPU: 50, Memory: 80}); len(got) != 1 {
		t.Fatalf("expected alert at limit 50, got %d", len(got))
	}
	// Raising it back stops the alerts.
	if got := Evaluate(3, r, Limits{CPU: 80, Memory: 80}); len(got) != 0 {
		t.Fatalf("expected no alert after raise, got %d", len(got))
	}
}

func TestRunCyclePersistsSampleAndAlerts(t *testing.T) {
	samples, alerts := newTestStores(t)
	sampler := &stubSampler{reading: Reading{CPUPercent: 91, MemoryPercent: 85}}
	c := New(samples, alerts, NewRegistry(80, 80), sampler, time.Second, 0)

	c.runCycle(context.Background())

	count, err := samples.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 sample, got %d", count)
	}

	stored, err := alerts.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 alerts (cpu + memory), got %d", len(stored))
	}
}

func TestRunCycleSustainedBreachAlertsEveryCycle(t *testing.T) {
	samples, alerts := newTestStores(t)
	sampler := &stubSampler{reading: Reading{CPUPercent: 95, MemoryPercent: 10}}
	c := New(samples, alerts, NewRegistry(80, 80), sampler, time.Second, 0)

	for i := 0; i < 3; i++ {
		c.runCycle(context.Background())
	}

	stored, err := alerts.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("sustained breach produced %d alerts over 3 cycles, want 3", len(stored))
	}
}

func TestRunCycleSkipsOnSamplingFailure(t *testing.T) {
	samples, alerts := newTestStores(t)
	sampler := &stubSampler{failing: true}
	c := New(samples, alerts, NewRegistry(80, 80), sampler, time.Second, 0)

	c.runCycle(context.Background())

	count, _ := samples.Count()
	if count != 0 {
		t.Fatalf("failed cycle appended %d samples, want 0", count)
	}

	// Recovery on a later tick.
	sampler.failing = false
	sampler.reading = Reading{CPUPercent: 10, MemoryPercent: 10}
	c.runCycle(context.Background())
	count, _ = samples.Count()
	if count != 1 {
		t.Fatalf("expected 1 sample after recovery, got %d", count)
	}
}

func TestRunCycleRetention(t *testing.T) {
	samples, alerts := newTestStores(t)
	sampler := &stubSampler{reading: Reading{CPUPercent: 10, MemoryPercent: 10}}
	c := New(samples, alerts, NewRegistry(80, 80), sampler, time.Second, 3)

	for i := 0; i < 6; i++ {
		c.runCycle(context.Background())
	}

	count, _ := samples.Count()
	if count != 3 {
		t.Fatalf("retention kept %d samples, want 3", count)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	samples, alerts := newTestStores(t)
	sampler := &stubSampler{reading: Reading{CPUPercent: 10, MemoryPercent: 10}}
	c := New(samples, alerts, NewRegistry(80, 80), sampler, 10*time.Millisecond, 0)

	if c.Running() {
		t.Fatal("collector reports running before Start")
	}

	c.Start()
	c.Start() // second Start is a no-op
	if !c.Running() {
		t.Fatal("collector not running after Start")
	}

	// Let a few cycles elapse.
	deadline := time.Now().Add(2 * time.Second)
	for {
		count, _ := samples.Count()
		if count >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("collector produced %d samples within deadline", count)
		}
		time.Sleep(5 * time.Millisecond)
	}

	c.Stop()
	if c.Running() {
		t.Fatal("collector still running after Stop")
	}
	c.Stop() // second Stop is a no-op

	// No further samples after Stop returns.
	before, _ := samples.Count()
	time.Sleep(50 * time.Millisecond)
	after, _ := samples.Count()
	if after != before {
		t.Fatalf("samples appended after Stop: %d → %d", before, after)
	}
}

func TestAlertMessageFormatting(t *testing.T) {
	// Two decimals, always.
	for _, v := range []float64{80.005, 99.999, 81} {
		alerts := Evaluate(0, Reading{CPUPercent: v}, Limits{CPU: 80, Memory: 80})
		if len(alerts) != 1 {
			t.Fatalf("value %v: expected 1 alert", v)
		}
		want := fmt.Sprintf("CPU usage exceeded threshold: %.2f%%", v)
		if alerts[0].Message != want {
			t.Errorf("Message = %q, want %q", alerts[0].Message, want)
		}
	}
}
