package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/gridsum/internal/format"
)

// sparklineSamples is the number of CPU and memory samples kept.
const sparklineSamples = 30

// MetricsModel shows overall progress, the result, runtime memory and
// system load.
type MetricsModel struct {
	average      float64
	eta          time.Duration
	sum          string
	errText      string
	alloc        uint64
	heapSys      uint64
	numGC        uint32
	numGoroutine int
	cpu          *SampleWindow
	mem          *SampleWindow
	width        int
	height       int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		cpu: NewSampleWindow(sparklineSamples),
		mem: NewSampleWindow(sparklineSamples),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

// UpdateProgress records the average progress and ETA.
func (m *MetricsModel) UpdateProgress(average float64, eta time.Duration) {
	m.average, m.eta = average, eta
}

// SetSum records the final total.
func (m *MetricsModel) SetSum(sum string) {
	m.sum = sum
	m.average, m.eta = 1, 0
}

// SetError records a failed reduction.
func (m *MetricsModel) SetError(err error) {
	m.errText = err.Error()
}

// UpdateMemStats records a runtime memory sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.alloc = msg.Alloc
	m.heapSys = msg.HeapSys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// UpdateSysStats records a system load sample.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpu.Add(msg.CPUPercent)
	m.mem.Add(msg.MemPercent)
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("REDUCTION"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-11s", label)), value)
	}
	barWidth := max(m.width-24, 10)
	row("Progress:", barStyle.Render(format.ProgressBar(m.average, barWidth))+" "+
		valueStyle.Render(fmt.Sprintf("%5.1f%%", m.average*100)))
	row("ETA:", valueStyle.Render(format.FormatETA(m.eta)))
	switch {
	case m.errText != "":
		row("Error:", errorStyle.Render(m.errText))
	case m.sum != "":
		row("Sum:", sumStyle.Render(m.sum))
	default:
		row("Sum:", dimStyle.Render("pending"))
	}
	b.WriteString("\n")
	row("Heap:", valueStyle.Render(format.FormatBytes(m.alloc)+" / "+format.FormatBytes(m.heapSys)))
	row("GC:", valueStyle.Render(fmt.Sprintf("%d", m.numGC)))
	row("Goroutines:", valueStyle.Render(fmt.Sprintf("%d", m.numGoroutine)))
	row("CPU:", cpuSparklineStyle.Render(RenderSparkline(m.cpu.Values()))+
		" "+valueStyle.Render(fmt.Sprintf("%.0f%%", m.cpu.Latest())))
	row("Memory:", memSparklineStyle.Render(RenderSparkline(m.mem.Values()))+
		" "+valueStyle.Render(fmt.Sprintf("%.0f%%", m.mem.Latest())))

	return panelStyle.Width(max(m.width-2, 0)).Height(max(m.height-2, 0)).
		Render(strings.TrimRight(b.String(), "\n"))
}
