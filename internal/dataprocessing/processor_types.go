package dataprocessing

import (
	"fmt"
	"strings"
)

// GapPolicy decides what Resample emits for intervals with no observations
type GapPolicy int

const (
	// GapOmit leaves empty intervals out of the result
	GapOmit GapPolicy = iota
	// GapNaN emits a row of missing values for each empty interval
	GapNaN
	// GapForwardFill carries the last observed row into empty intervals
	GapForwardFill
)

// ParseGapPolicy converts a configured policy name
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "omit":
		return GapOmit, nil
	case "nan":
		return GapNaN, nil
	case "ffill", "forward-fill":
		return GapForwardFill, nil
	default:
		return GapOmit, fmt.Errorf("unknown gap policy %q (options are omit, nan, ffill)", s)
	}
}

// String returns the configured name of the policy
func (p GapPolicy) String() string {
	switch p {
	case GapNaN:
		return "nan"
	case GapForwardFill:
		return "ffill"
	default:
		return "omit"
	}
}

// ResampleStats summarises one resample operation
type ResampleStats struct {
	InputRows     int
	Buckets       int
	EmptyBuckets  int
	ForwardFilled int
}
