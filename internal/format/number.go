package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumberString inserts thousands separators into a decimal integer
// string. A leading minus sign is preserved; a fractional part, if any, is
// left untouched.
func FormatNumberString(s string) string {
	if s == "" {
		return s
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s, frac = s[:i], s[i:]
	}
	if len(s) <= 3 {
		return sign + s + frac
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(sign) + len(frac))
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

// FormatInt formats an integer with thousands separators.
func FormatInt(n int) string {
	return FormatNumberString(strconv.Itoa(n))
}

// FormatSum renders a reduction result. Integral values print without a
// fractional part and with separators; other values use the shortest
// representation that round-trips.
func FormatSum(v float64) string {
	if v < 1e15 && v > -1e15 && v == math.Trunc(v) {
		return FormatNumberString(strconv.FormatInt(int64(v), 10))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatBytes renders a byte count with binary units.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
