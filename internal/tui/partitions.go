package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/gridsum/internal/format"
	"github.com/agbru/gridsum/internal/orchestration"
)

// PartitionsModel shows one progress bar per partition, with the partial
// sum once the reduction has finished. It scrolls when there are more
// partitions than rows.
type PartitionsModel struct {
	values   []float64
	partials []orchestration.PartialResult
	offset   int
	width    int
	height   int
}

// NewPartitionsModel creates the panel for n partitions.
func NewPartitionsModel(n int) PartitionsModel {
	return PartitionsModel{values: make([]float64, max(n, 0))}
}

// SetSize updates dimensions.
func (p *PartitionsModel) SetSize(w, h int) {
	p.width, p.height = w, h
	p.clampOffset()
}

// Update records the progress of one partition. Out-of-range indices are
// ignored.
func (p *PartitionsModel) Update(index int, value float64) {
	if index >= 0 && index < len(p.values) {
		p.values[index] = value
	}
}

// SetResult marks every partition complete and stores the partial sums.
func (p *PartitionsModel) SetResult(partials []orchestration.PartialResult) {
	p.partials = partials
	for i := range p.values {
		p.values[i] = 1
	}
}

// Reset clears progress and results for a rerun.
func (p *PartitionsModel) Reset() {
	clear(p.values)
	p.partials = nil
	p.offset = 0
}

// ScrollUp moves the window up one row.
func (p *PartitionsModel) ScrollUp() {
	p.offset--
	p.clampOffset()
}

// ScrollDown moves the window down one row.
func (p *PartitionsModel) ScrollDown() {
	p.offset++
	p.clampOffset()
}

// visibleRows is the panel height minus the border and the title lines.
func (p PartitionsModel) visibleRows() int {
	return max(p.height-4, 1)
}

func (p *PartitionsModel) clampOffset() {
	p.offset = min(max(p.offset, 0), max(len(p.values)-p.visibleRows(), 0))
}

// View renders the panel.
func (p PartitionsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PARTITIONS"))
	if n := len(p.values); n > p.visibleRows() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d-%d of %d", p.offset+1, min(p.offset+p.visibleRows(), n), n)))
	}
	b.WriteString("\n\n")

	barWidth := max(p.width-36, 10)
	end := min(p.offset+p.visibleRows(), len(p.values))
	for i := p.offset; i < end; i++ {
		line := fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("#%-4d", i)),
			barStyle.Render(format.ProgressBar(p.values[i], barWidth)),
			valueStyle.Render(fmt.Sprintf("%5.1f%%", p.values[i]*100)))
		if i < len(p.partials) {
			line += " " + sumStyle.Render(format.FormatSum(p.partials[i].Sum))
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return panelStyle.Width(max(p.width-2, 0)).Height(max(p.height-2, 0)).Render(b.String())
}
