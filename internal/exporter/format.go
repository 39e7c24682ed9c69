package exporter

import (
	"math"
	"strconv"
	"time"
)

// TimestampLayout is the layout of the index column in exported tables
const TimestampLayout = "2006-01-02 15:04:05"

// formatFloat formats a value with the shortest exact representation.
// Missing values are written as empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseFloat reverses formatFloat
func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// formatTime formats an index timestamp
func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
