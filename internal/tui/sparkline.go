package tui

// sparkLevels are the eight block heights used by RenderSparkline.
const sparkLevels = "▁▂▃▄▅▆▇█"

// SampleWindow keeps the most recent samples of one system gauge, oldest
// first. The metrics panel holds one per sparkline.
type SampleWindow struct {
	size    int
	samples []float64
}

// NewSampleWindow returns a window holding at most size samples.
func NewSampleWindow(size int) *SampleWindow {
	size = max(size, 1)
	return &SampleWindow{size: size, samples: make([]float64, 0, size)}
}

// Add appends v, dropping the oldest sample when the window is full.
func (w *SampleWindow) Add(v float64) {
	if len(w.samples) == w.size {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.size-1]
	}
	w.samples = append(w.samples, v)
}

// Values returns the samples, oldest first. The slice is owned by w.
func (w *SampleWindow) Values() []float64 { return w.samples }

// Latest returns the newest sample, or 0 when the window is empty.
func (w *SampleWindow) Latest() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	return w.samples[len(w.samples)-1]
}

// Size returns the window capacity.
func (w *SampleWindow) Size() int { return w.size }

// Clear drops all samples.
func (w *SampleWindow) Clear() { w.samples = w.samples[:0] }

// RenderSparkline draws percentages (0..100) as block characters, one per
// value. Values outside the range are clamped.
func RenderSparkline(values []float64) string {
	levels := []rune(sparkLevels)
	out := make([]rune, 0, len(values))
	for _, v := range values {
		pct := min(max(v, 0), 100)
		out = append(out, levels[int(pct*float64(len(levels)-1)/100)])
	}
	return string(out)
}
