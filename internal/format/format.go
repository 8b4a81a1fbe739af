package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Timestamp formats a position in seconds as H:MM:SS.ff.
// Fractions are truncated to centiseconds.
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	rem := total % 3600
	m := rem / 60
	s := rem % 60
	frac := int(math.Floor((seconds - float64(total)) * 100))
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, frac)
}

// ParseTime parses a time position given either as a bare number of seconds
// ("90", "12.5") or as a clock timestamp ("ss", "mm:ss", "hh:mm:ss", each
// form allowing a fractional part on the last component).
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse time: %w", ErrInvalidTime)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parse time %q: too many components: %w", s, ErrInvalidTime)
	}

	var total float64
	for i, part := range parts {
		// Only the last component may carry a fraction.
		if i != len(parts)-1 && strings.Contains(part, ".") {
			return 0, fmt.Errorf("parse time %q: %w", s, ErrInvalidTime)
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("parse time %q: %w", s, ErrInvalidTime)
		}
		total = total*60 + v
	}
	return total, nil
}
