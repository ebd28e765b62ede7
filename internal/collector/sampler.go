package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Reading is one point-in-time host resource measurement.
type Reading struct {
	CPUPercent    float64
	MemoryPercent float64
}

// Sampler measures host resource usage. The host implementation uses
// gopsutil; tests substitute a stub.
type Sampler interface {
	Sample(ctx context.Context) (Reading, error)
}

// HostSampler reads CPU and memory usage via gopsutil.
type HostSampler struct{}

// Sample measures aggregate CPU busy percent over a short window plus the
// current virtual memory used percent.
func (HostSampler) Sample(ctx context.Context) (Reading, error) {
	pcts, err := cpu.PercentWithContext(ctx, 500*time.Millisecond, false)
	if err != nil {
		return Reading{}, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return Reading{}, fmt.Errorf("cpu percent: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("virtual memory: %w", err)
	}

	return Reading{CPUPercent: pcts[0], MemoryPercent: vm.UsedPercent}, nil
}
