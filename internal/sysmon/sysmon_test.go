package sysmon

import (
	"runtime"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestHost_LogicalCPUs(t *testing.T) {
	h := Host()
	if h.LogicalCPUs < 1 {
		t.Errorf("LogicalCPUs = %d, want >= 1", h.LogicalCPUs)
	}
	if h.PhysicalCPUs > h.LogicalCPUs {
		t.Errorf("PhysicalCPUs (%d) > LogicalCPUs (%d)", h.PhysicalCPUs, h.LogicalCPUs)
	}
}

func TestFeatures_AMD64Baseline(t *testing.T) {
	if runtime.GOARCH != "amd64" {
		t.Skip("baseline check only applies to amd64")
	}
	for _, f := range Features() {
		if f == "sse2" {
			return
		}
	}
	t.Error("every amd64 CPU supports sse2")
}
