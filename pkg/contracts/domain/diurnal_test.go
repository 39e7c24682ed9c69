package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	ts := time.Date(2014, 3, 12, 14, 5, 59, 0, time.UTC)
	key := TimeOfDayOf(ts)

	assert.Equal(t, "14:05", key.String())
	assert.Equal(t, 14, key.Hour())
	assert.Equal(t, 5, key.Minute())
	assert.Equal(t, 14*time.Hour+5*time.Minute, key.Offset())

	ref := time.Date(2000, 1, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2000, 1, 1, 14, 5, 0, 0, time.UTC), key.On(ref))

	parsed, err := ParseTimeOfDay("14:05")
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

func TestNewDateSelection(t *testing.T) {
	d1 := time.Date(2014, 3, 12, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2014, 3, 14, 0, 0, 0, 0, time.UTC)

	none, err := NewDateSelection()
	require.NoError(t, err)
	assert.True(t, none.IsZero())
	assert.True(t, none.Contains(time.Now()))

	single, err := NewDateSelection(d1)
	require.NoError(t, err)
	assert.True(t, single.Contains(d1.Add(23*time.Hour+59*time.Minute)))
	assert.False(t, single.Contains(d1.AddDate(0, 0, 1)))
	assert.False(t, single.Contains(d1.Add(-time.Minute)))

	rng, err := NewDateSelection(d2, d1)
	require.NoError(t, err)
	start, end, ok := rng.Bounds()
	require.True(t, ok)
	assert.Equal(t, d1, start)
	assert.Equal(t, d2.AddDate(0, 0, 1), end)
	assert.True(t, rng.Contains(d2.Add(12*time.Hour)), "end day is inclusive")

	_, err = NewDateSelection(d1, d2, d2)
	assert.ErrorIs(t, err, ErrInvalidDateSelection)
}

func TestDiurnalProfileLookup(t *testing.T) {
	p := &DiurnalProfile{
		Columns: []string{"o3"},
		Buckets: []DiurnalBucket{
			{Key: 90, Stats: map[string]Stats{"o3": {Count: 1, Mean: 3}}},
			{Key: 0, Stats: map[string]Stats{"o3": {Count: 2, Mean: 1}}},
			{Key: 30, Stats: map[string]Stats{"o3": {Count: 1, Mean: 2}}},
		},
	}
	p.Sort()

	keys, means := p.Series("o3", StatMean)
	assert.Equal(t, []TimeOfDay{0, 30, 90}, keys)
	assert.Equal(t, []float64{1, 2, 3}, means)

	keys, _ = p.Series("nox", StatMean)
	assert.Empty(t, keys)
}

func TestStatsField(t *testing.T) {
	s := Stats{Count: 4, Mean: 2.5, Std: 1, Min: 1, Q25: 1.75, Median: 2.5, Q75: 3.25, Max: 4}
	assert.Equal(t, 4.0, s.Field(StatCount))
	assert.Equal(t, 2.5, s.Field(StatMedian))
	assert.True(t, math.IsNaN(s.Field("bogus")))

	empty := EmptyStats()
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Mean))
	assert.Len(t, StatFields(), 8)
}
