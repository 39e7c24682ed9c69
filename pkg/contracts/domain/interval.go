package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var intervalAlias = regexp.MustCompile(`^(\d*)\s*([A-Za-z]+)$`)

var intervalUnits = map[string]time.Duration{
	"s":       time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"t":       time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"h":       time.Hour,
	"hr":      time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"d":       24 * time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
}

// ParseInterval parses a resample interval.
// Go duration literals ("90s", "1m30s") and offset aliases with an optional
// multiplier ("5S", "1min", "15T", "1H", "1D") are accepted.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidInterval)
	}

	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidInterval, s)
		}
		return d, nil
	}

	m := intervalAlias.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}

	unit, ok := intervalUnits[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrInvalidInterval, s)
	}

	n := 1
	if m[1] != "" {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
		}
		n = v
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidInterval, s)
	}

	return time.Duration(n) * unit, nil
}
