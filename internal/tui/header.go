package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/gridsum/internal/format"
)

// HeaderModel renders the top bar: title, version, grid shape and elapsed
// time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	shape     string
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string, rows, cols, workers int) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		shape:     fmt.Sprintf("%d x %d grid, %d workers", rows, cols, workers),
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() { h.endTime = time.Now() }

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// Elapsed returns the running or frozen elapsed time.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	title := "gridsum"
	if h.version != "" && h.version != "dev" {
		title += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	row := titleStyle.Render(title) + pipe +
		accentStyle.Render(h.shape) + pipe +
		accentStyle.Render("Elapsed: "+format.FormatExecutionDuration(h.Elapsed()))
	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += fmt.Sprintf("%*s", gap, "")
	}
	return headerStyle.Width(h.width).Render(row)
}
