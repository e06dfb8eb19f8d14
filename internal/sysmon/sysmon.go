// Package sysmon provides system-wide CPU and memory usage sampling and a
// description of the host the reducer runs on.
package sysmon

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	xcpu "golang.org/x/sys/cpu"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// HostInfo describes the machine, for the CLI details view, the TUI header
// and the adaptive worker defaults.
type HostInfo struct {
	LogicalCPUs  int
	PhysicalCPUs int
	ModelName    string
	TotalMemory  uint64
	Features     []string
}

// Host gathers HostInfo. Fields that cannot be read stay at their zero value
// except LogicalCPUs, which falls back to runtime.NumCPU.
func Host() HostInfo {
	h := HostInfo{LogicalCPUs: runtime.NumCPU(), Features: Features()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		h.LogicalCPUs = n
	}
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		h.PhysicalCPUs = n
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		h.ModelName = strings.TrimSpace(infos[0].ModelName)
	}
	if vmem, err := mem.VirtualMemory(); err == nil && vmem != nil {
		h.TotalMemory = vmem.Total
	}
	return h
}

// Features lists the SIMD extensions relevant to floating point summation
// that the CPU reports.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(xcpu.X86.HasSSE2, "sse2")
		add(xcpu.X86.HasSSE41, "sse4.1")
		add(xcpu.X86.HasAVX, "avx")
		add(xcpu.X86.HasAVX2, "avx2")
		add(xcpu.X86.HasFMA, "fma")
		add(xcpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(xcpu.ARM64.HasASIMD, "asimd")
		add(xcpu.ARM64.HasFPHP, "fphp")
		add(xcpu.ARM64.HasSVE, "sve")
	}
	return out
}
