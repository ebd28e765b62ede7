package collector

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry(80, 80)
	limits := r.Get()
	if limits.CPU != 80 || limits.Memory != 80 {
		t.Fatalf("Get() = %+v, want {80 80}", limits)
	}
}

func TestRegistryFallsBackOnBadInitialValues(t *testing.T) {
	r := NewRegistry(0, 150)
	limits := r.Get()
	if limits.CPU != 80 || limits.Memory != 80 {
		t.Fatalf("Get() = %+v, want fallback {80 80}", limits)
	}
}

func TestRegistrySet(t *testing.T) {
	r := NewRegistry(80, 80)
	if err := r.Set(55.5, 90); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	limits := r.Get()
	if limits.CPU != 55.5 || limits.Memory != 90 {
		t.Fatalf("Get() = %+v, want {55.5 90}", limits)
	}
}

func TestRegistrySetRejectsOutOfRange(t *testing.T) {
	r := NewRegistry(80, 80)
	cases := []struct {
		name        string
		cpu, memory float64
	}{
		{"zero cpu", 0, 50},
		{"negative memory", 50, -1},
		{"cpu above 100", 101, 50},
		{"memory above 100", 50, 100.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := r.Set(tc.cpu, tc.memory); !errors.Is(err, ErrInvalidLimit) {
				t.Fatalf("Set(%v, %v) = %v, want ErrInvalidLimit", tc.cpu, tc.memory, err)
			}
		})
	}
	// A rejected update must not disturb the current snapshot.
	limits := r.Get()
	if limits.CPU != 80 || limits.Memory != 80 {
		t.Fatalf("limits changed by rejected Set: %+v", limits)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry(80, 80)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Set(50, 60)
				_ = r.Set(70, 80)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				limits := r.Get()
				// Both fields always come from the same generation.
				valid := (limits.CPU == 50 && limits.Memory == 60) ||
					(limits.CPU == 70 && limits.Memory == 80) ||
					(limits.CPU == 80 && limits.Memory == 80)
				if !valid {
					t.Errorf("torn read: %+v", limits)
					return
				}
			}
		}()
	}
	wg.Wait()
}
