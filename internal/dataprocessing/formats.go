package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"actcli/pkg/contracts/domain"
)

// FormatSpec describes how one on-disk layout is turned into a table
type FormatSpec struct {
	Format domain.FileFormat
	// Delimiter separates fields; 0 means runs of whitespace.
	Delimiter rune
	// HeaderLine is the zero-based physical line holding column names.
	HeaderLine int
	// TimestampColumns are joined with a space to form the row timestamp.
	// Empty means the first column.
	TimestampColumns []string
	// DropColumns are non-measurement columns removed from the table.
	DropColumns []string
	// LowerCase folds column names to lower case.
	LowerCase bool
}

var formatSpecs = map[domain.FileFormat]FormatSpec{
	domain.FormatDat: {
		Format:           domain.FormatDat,
		Delimiter:        0,
		HeaderLine:       9,
		TimestampColumns: []string{"date", "time"},
		DropColumns:      []string{"flags"},
		LowerCase:        true,
	},
	domain.FormatCSV: {
		Format:     domain.FormatCSV,
		Delimiter:  ',',
		HeaderLine: 0,
	},
	domain.FormatVAPSText: {
		Format:           domain.FormatVAPSText,
		Delimiter:        '\t',
		HeaderLine:       0,
		TimestampColumns: []string{"Date/Time"},
		DropColumns:      []string{"Record"},
	},
	// Workbook layout is positional: see ReaderOptions.
	domain.FormatXLSX: {
		Format: domain.FormatXLSX,
	},
}

// SpecFor returns the layout description of a format
func SpecFor(f domain.FileFormat) (FormatSpec, error) {
	spec, ok := formatSpecs[f]
	if !ok {
		return FormatSpec{}, fmt.Errorf("%w: %s", domain.ErrInvalidFormat, f)
	}
	return spec, nil
}

func (s FormatSpec) normalizeName(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	if s.LowerCase {
		name = strings.ToLower(name)
	}
	return name
}

func (s FormatSpec) isDropped(name string) bool {
	for _, d := range s.DropColumns {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

// TimestampLayouts are tried in order by ParseTimestamp. All are read as UTC.
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01-02-06 15:04",
	"01-02-06 15:04:05",
	"01/02/06 15:04",
	"01/02/06 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006/01/02 15:04:05",
}

// ParseTimestamp parses an instrument timestamp against TimestampLayouts
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range TimestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
