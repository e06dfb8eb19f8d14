package format

import (
	"fmt"
	"strings"
	"time"
)

const (
	barFilled = "█"
	barEmpty  = "░"
)

// ProgressBar renders a fixed-width bar for a completion fraction. The
// fraction is clamped to [0, 1].
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	pct := min(max(progress, 0), 1) * 100
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), pct, FormatETA(eta))
}
