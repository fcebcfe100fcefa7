// Package formatting renders and parses human-readable quantities: byte sizes
// for request limits and stored drafts, and currency amounts held in cents.
package formatting

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with the largest base-1024 unit that keeps the value
// at or above one, using one decimal place above bytes.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + FormatBytes(-n)
	}

	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// ParseBytes parses sizes such as "512", "64KB" or "1.5 MB". Units are
// base-1024 and case-insensitive; a bare number is bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})

	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.ToUpper(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	if unit == "" {
		return int64(value), nil
	}

	multiplier := int64(1)
	for _, u := range sizeUnits {
		if u == unit {
			return int64(value * float64(multiplier)), nil
		}
		multiplier *= 1024
	}
	return 0, fmt.Errorf("unknown byte size unit %q", unit)
}
