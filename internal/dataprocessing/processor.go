package dataprocessing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"actcli/pkg/contracts/domain"
)

var nan = math.NaN()

type indexedRow struct {
	ts     time.Time
	values []float64
}

// Merge concatenates tables in the order given. Columns are the union in
// first-seen order; rows are stably sorted by timestamp and the first
// occurrence of each timestamp wins. Inputs need not be sorted.
func Merge(tables ...*domain.Table) *domain.Table {
	columns, seen := unionColumns(tables)

	var rows []indexedRow
	for _, t := range tables {
		if t == nil {
			continue
		}
		pos := make([]int, len(t.Columns))
		for j, c := range t.Columns {
			pos[j] = seen[c]
		}
		for i, ts := range t.Index {
			values := make([]float64, len(columns))
			for k := range values {
				values[k] = nan
			}
			for j, v := range t.Values[i] {
				values[pos[j]] = v
			}
			rows = append(rows, indexedRow{ts: ts, values: values})
		}
	}

	return dedupRows(columns, rows)
}

// Join aligns tables side by side on their timestamps, as when the profiles
// of several instruments are combined. Columns are the union in first-seen
// order and each cell takes the first non-missing value offered for it.
func Join(tables ...*domain.Table) *domain.Table {
	columns, seen := unionColumns(tables)

	var rows []indexedRow
	pos := make(map[int64]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for i, ts := range t.Index {
			r, ok := pos[ts.UnixNano()]
			if !ok {
				r = len(rows)
				pos[ts.UnixNano()] = r
				rows = append(rows, indexedRow{ts: ts, values: nanRow(len(columns))})
			}
			for j, v := range t.Values[i] {
				if k := seen[t.Columns[j]]; math.IsNaN(rows[r].values[k]) {
					rows[r].values[k] = v
				}
			}
		}
	}

	return dedupRows(columns, rows)
}

// JoinModels joins one table per model. A column carried by more than one
// model, such as the 42I and 43I "intt", becomes "<column>_<model>" in each.
func JoinModels(models []domain.Model, tables []*domain.Table) *domain.Table {
	owners := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			owners[c]++
		}
	}

	qualified := make([]*domain.Table, len(tables))
	for i, t := range tables {
		if t == nil {
			continue
		}
		renamed := *t
		renamed.Columns = make([]string, len(t.Columns))
		for j, c := range t.Columns {
			if owners[c] > 1 {
				c += "_" + models[i].String()
			}
			renamed.Columns[j] = c
		}
		qualified[i] = &renamed
	}
	return Join(qualified...)
}

func unionColumns(tables []*domain.Table) ([]string, map[string]int) {
	var columns []string
	seen := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := seen[c]; !ok {
				seen[c] = len(columns)
				columns = append(columns, c)
			}
		}
	}
	return columns, seen
}

// Dedup returns a sorted copy of t holding the first row of each timestamp
func Dedup(t *domain.Table) *domain.Table {
	rows := make([]indexedRow, len(t.Index))
	for i, ts := range t.Index {
		rows[i] = indexedRow{ts: ts, values: append([]float64(nil), t.Values[i]...)}
	}
	return dedupRows(t.Columns, rows)
}

func dedupRows(columns []string, rows []indexedRow) *domain.Table {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ts.Before(rows[j].ts)
	})

	out := domain.NewTable(columns)
	for i, r := range rows {
		if i > 0 && r.ts.Equal(rows[i-1].ts) {
			continue
		}
		out.Index = append(out.Index, r.ts)
		out.Values = append(out.Values, r.values)
	}
	return out
}

// Resample averages t onto a regular grid of width interval
func Resample(t *domain.Table, interval time.Duration, policy GapPolicy) (*domain.Table, error) {
	out, _, err := ResampleWithStats(t, interval, policy)
	return out, err
}

// ResampleWithStats is Resample that also reports how the grid was filled.
// Buckets start at ts.Truncate(interval); each column is the mean of its
// non-missing values in the bucket.
func ResampleWithStats(t *domain.Table, interval time.Duration, policy GapPolicy) (*domain.Table, ResampleStats, error) {
	stats := ResampleStats{InputRows: t.Len()}
	if interval <= 0 {
		return nil, stats, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInterval, interval)
	}

	type accumulator struct {
		sums   []float64
		counts []int
	}
	width := len(t.Columns)
	buckets := make(map[int64]*accumulator)
	var keys []time.Time

	for i, ts := range t.Index {
		key := ts.Truncate(interval)
		acc, ok := buckets[key.UnixNano()]
		if !ok {
			acc = &accumulator{sums: make([]float64, width), counts: make([]int, width)}
			buckets[key.UnixNano()] = acc
			keys = append(keys, key)
		}
		for j, v := range t.Values[i] {
			if math.IsNaN(v) {
				continue
			}
			acc.sums[j] += v
			acc.counts[j]++
		}
	}
	if !t.IsSorted() {
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	}

	out := domain.NewTable(t.Columns)
	var last []float64
	emit := func(key time.Time, values []float64) {
		out.Index = append(out.Index, key)
		out.Values = append(out.Values, values)
	}

	for k, key := range keys {
		if k > 0 && policy != GapOmit {
			for gap := keys[k-1].Add(interval); gap.Before(key); gap = gap.Add(interval) {
				stats.EmptyBuckets++
				switch policy {
				case GapNaN:
					emit(gap, nanRow(width))
				case GapForwardFill:
					emit(gap, append([]float64(nil), last...))
					stats.ForwardFilled++
				}
			}
		}

		acc := buckets[key.UnixNano()]
		values := make([]float64, width)
		for j := range values {
			if acc.counts[j] == 0 {
				values[j] = nan
				continue
			}
			values[j] = acc.sums[j] / float64(acc.counts[j])
		}
		emit(key, values)
		last = values
	}

	stats.Buckets = out.Len()
	return out, stats, nil
}

func nanRow(width int) []float64 {
	row := make([]float64, width)
	for j := range row {
		row[j] = nan
	}
	return row
}
