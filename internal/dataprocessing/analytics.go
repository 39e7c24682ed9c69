package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	apperrors "actcli/internal/errors"
	"actcli/pkg/contracts/domain"
)

// Aggregate builds the diurnal profile of t. Rows outside sel are dropped,
// the rest are keyed by hour and minute, and each requested column is
// summarised over its non-missing values. No columns means all of them.
func Aggregate(t *domain.Table, sel domain.DateSelection, columns ...string) (*domain.DiurnalProfile, error) {
	if len(columns) == 0 {
		columns = t.Columns
	}
	idx := make([]int, len(columns))
	for k, c := range columns {
		j := t.ColumnIndex(c)
		if j < 0 {
			return nil, apperrors.NewConfigError("cannot aggregate",
				fmt.Errorf("%w: %q", domain.ErrUnknownColumn, c))
		}
		idx[k] = j
	}

	if !sel.IsZero() {
		t = t.Filter(sel.Contains)
	}

	// samples[key][k] holds the observations of columns[k] at key
	samples := make(map[domain.TimeOfDay][][]float64)
	for i, ts := range t.Index {
		key := domain.TimeOfDayOf(ts)
		bucket, ok := samples[key]
		if !ok {
			bucket = make([][]float64, len(columns))
			samples[key] = bucket
		}
		for k, j := range idx {
			if v := t.Values[i][j]; !math.IsNaN(v) {
				bucket[k] = append(bucket[k], v)
			}
		}
	}

	profile := &domain.DiurnalProfile{
		Columns: append([]string(nil), columns...),
		Buckets: make([]domain.DiurnalBucket, 0, len(samples)),
	}
	for key, bucket := range samples {
		b := domain.DiurnalBucket{Key: key, Stats: make(map[string]domain.Stats, len(columns))}
		for k, c := range columns {
			b.Stats[c] = Describe(bucket[k])
		}
		profile.Buckets = append(profile.Buckets, b)
	}
	profile.Sort()
	return profile, nil
}

// Describe summarises x. NaN values must already be removed; x is sorted in place.
// Quartiles interpolate linearly between order statistics.
func Describe(x []float64) domain.Stats {
	if len(x) == 0 {
		return domain.EmptyStats()
	}
	sort.Float64s(x)

	return domain.Stats{
		Count:  len(x),
		Mean:   stat.Mean(x, nil),
		Std:    stat.StdDev(x, nil),
		Min:    floats.Min(x),
		Q25:    linearQuantile(0.25, x),
		Median: linearQuantile(0.5, x),
		Q75:    linearQuantile(0.75, x),
		Max:    floats.Max(x),
	}
}

// linearQuantile returns the p-quantile of sorted x at position (n-1)p,
// interpolating between the neighbouring order statistics
func linearQuantile(p float64, x []float64) float64 {
	h := float64(len(x)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}
