package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MinutesPerDay is the number of distinct hour:minute keys
const MinutesPerDay = 24 * 60

// TimeOfDay is a date-agnostic hour:minute key, stored as minutes since midnight
type TimeOfDay int

// TimeOfDayOf drops the date component of t
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseTimeOfDay parses an HH:MM key
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDayOf(t), nil
}

// Hour returns the hour component
func (k TimeOfDay) Hour() int { return int(k) / 60 }

// Minute returns the minute component
func (k TimeOfDay) Minute() int { return int(k) % 60 }

// String formats the key as HH:MM
func (k TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", k.Hour(), k.Minute())
}

// Offset returns the key as a duration since midnight
func (k TimeOfDay) Offset() time.Duration {
	return time.Duration(k) * time.Minute
}

// On places the key on the calendar day of ref, giving a sortable timestamp
func (k TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location()).Add(k.Offset())
}

// StatField names one statistic of a Stats record
type StatField string

const (
	StatCount  StatField = "count"
	StatMean   StatField = "mean"
	StatStd    StatField = "std"
	StatMin    StatField = "min"
	StatQ25    StatField = "25%"
	StatMedian StatField = "50%"
	StatQ75    StatField = "75%"
	StatMax    StatField = "max"
)

// StatFields lists every field in describe() order
func StatFields() []StatField {
	return []StatField{StatCount, StatMean, StatStd, StatMin, StatQ25, StatMedian, StatQ75, StatMax}
}

// Stats is the descriptive summary of one channel within one bucket.
// Count excludes missing values; the other fields are NaN when Count is 0.
type Stats struct {
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// EmptyStats returns the summary of a channel with no observations
func EmptyStats() Stats {
	nan := math.NaN()
	return Stats{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan}
}

// Field returns one statistic by name
func (s Stats) Field(f StatField) float64 {
	switch f {
	case StatCount:
		return float64(s.Count)
	case StatMean:
		return s.Mean
	case StatStd:
		return s.Std
	case StatMin:
		return s.Min
	case StatQ25:
		return s.Q25
	case StatMedian:
		return s.Median
	case StatQ75:
		return s.Q75
	case StatMax:
		return s.Max
	default:
		return math.NaN()
	}
}

// DiurnalBucket holds the statistics of every channel at one time of day
type DiurnalBucket struct {
	Key   TimeOfDay
	Stats map[string]Stats
}

// DiurnalProfile is the collection of buckets for a table, sorted 00:00 to 23:59
type DiurnalProfile struct {
	Columns []string
	Buckets []DiurnalBucket
}

// Sort orders the buckets chronologically by time of day
func (p *DiurnalProfile) Sort() {
	sort.Slice(p.Buckets, func(i, j int) bool {
		return p.Buckets[i].Key < p.Buckets[j].Key
	})
}

// Series returns parallel keys and values of one statistic of one channel
func (p *DiurnalProfile) Series(column string, field StatField) ([]TimeOfDay, []float64) {
	keys := make([]TimeOfDay, 0, len(p.Buckets))
	values := make([]float64, 0, len(p.Buckets))
	for _, b := range p.Buckets {
		s, ok := b.Stats[column]
		if !ok {
			continue
		}
		keys = append(keys, b.Key)
		values = append(values, s.Field(field))
	}
	return keys, values
}

// DateSelection narrows a table to a calendar day or an inclusive day range
type DateSelection struct {
	start time.Time
	end   time.Time // exclusive, midnight after the last selected day
	set   bool
}

// NewDateSelection builds a selection from zero, one or two dates.
// Zero dates select everything, one date selects that day, two dates select
// both days and every day between them. More dates is an error.
func NewDateSelection(dates ...time.Time) (DateSelection, error) {
	switch len(dates) {
	case 0:
		return DateSelection{}, nil
	case 1:
		day := startOfDay(dates[0])
		return DateSelection{start: day, end: day.AddDate(0, 0, 1), set: true}, nil
	case 2:
		first, last := startOfDay(dates[0]), startOfDay(dates[1])
		if last.Before(first) {
			first, last = last, first
		}
		return DateSelection{start: first, end: last.AddDate(0, 0, 1), set: true}, nil
	default:
		return DateSelection{}, fmt.Errorf("%w: got %d dates, want at most 2", ErrInvalidDateSelection, len(dates))
	}
}

// IsZero reports whether the selection keeps every row
func (s DateSelection) IsZero() bool { return !s.set }

// Bounds returns the half-open [start, end) interval of the selection
func (s DateSelection) Bounds() (time.Time, time.Time, bool) {
	return s.start, s.end, s.set
}

// Contains reports whether t falls on a selected day
func (s DateSelection) Contains(t time.Time) bool {
	if !s.set {
		return true
	}
	day := startOfDay(t)
	return !day.Before(s.start) && day.Before(s.end)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
