// Package hostinfo snapshots the machine a benchmark ran on, so stored
// results can be compared only against runs from similar hardware.
package hostinfo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info describes the host. Fields a probe could not fill stay zero.
type Info struct {
	Hostname     string `json:"hostname,omitempty"`
	OS           string `json:"os"`
	Platform     string `json:"platform,omitempty"`
	Arch         string `json:"arch"`
	CPUModel     string `json:"cpu_model,omitempty"`
	LogicalCPUs  int    `json:"logical_cpus,omitempty"`
	PhysicalCPUs int    `json:"physical_cpus,omitempty"`
	MemoryTotal  uint64 `json:"memory_total,omitempty"`
	GoVersion    string `json:"go_version"`
	GOMAXPROCS   int    `json:"gomaxprocs"`
}

// Collect probes the host. It always returns an Info; the error joins any
// probes that failed.
func Collect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		GoVersion:  runtime.Version(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	var errs []error
	if h, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
	} else {
		info.Hostname = h.Hostname
		info.Platform = strings.TrimSpace(h.Platform + " " + h.PlatformVersion)
	}

	if cpus, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	} else if len(cpus) > 0 {
		info.CPUModel = strings.TrimSpace(cpus[0].ModelName)
	}

	if n, err := cpu.CountsWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("logical cpu count: %w", err))
	} else {
		info.LogicalCPUs = n
	}

	if n, err := cpu.CountsWithContext(ctx, false); err != nil {
		errs = append(errs, fmt.Errorf("physical cpu count: %w", err))
	} else {
		info.PhysicalCPUs = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		info.MemoryTotal = vm.Total
	}

	return info, errors.Join(errs...)
}

// String renders a one-line summary, e.g.
// "linux/amd64, Intel(R) Xeon(R), 8 logical CPUs, 15.6 GiB, go1.25.0".
func (i *Info) String() string {
	if i == nil {
		return "unknown host"
	}
	parts := []string{i.OS + "/" + i.Arch}
	if i.CPUModel != "" {
		parts = append(parts, i.CPUModel)
	}
	if i.LogicalCPUs > 0 {
		parts = append(parts, fmt.Sprintf("%d logical CPUs", i.LogicalCPUs))
	}
	if i.MemoryTotal > 0 {
		parts = append(parts, fmt.Sprintf("%.1f GiB", float64(i.MemoryTotal)/(1<<30)))
	}
	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}
	return strings.Join(parts, ", ")
}
