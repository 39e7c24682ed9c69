package dataprocessing

import (
	"math"
	"time"

	"actcli/pkg/contracts/domain"
)

// Statistics is a one-line summary of a table used in run logs
type Statistics struct {
	Rows          int
	Columns       int
	Start         time.Time
	End           time.Time
	MissingValues int
}

// Summarize computes Statistics for a sorted table
func Summarize(t *domain.Table) Statistics {
	s := Statistics{Rows: t.Len(), Columns: len(t.Columns)}
	s.Start, s.End, _ = t.Span()
	for _, row := range t.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				s.MissingValues++
			}
		}
	}
	return s
}
