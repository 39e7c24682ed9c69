package dataprocessing

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "actcli/internal/errors"
	"actcli/internal/shared/testutil"
	"actcli/pkg/contracts/domain"
)

var march12 = time.Date(2014, 3, 12, 14, 0, 0, 0, time.UTC)

func noxSeries(n int) testutil.Series {
	return testutil.MinuteSeries(march12, n, []string{"no", "nox", "pmtt"}, func(i, j int) float64 {
		return []float64{10, 30, 40}[j]
	})
}

func TestReadDat(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDatFile(t, dir, "42I 031214.dat", "nox", noxSeries(5))
	logger, _ := testutil.NewTestLogger(t)

	res, err := NewReader(logger, ReaderOptions{}).ReadFile(context.Background(), path, domain.FormatDat)
	require.NoError(t, err)

	assert.Equal(t, []string{"no", "nox", "pmtt"}, res.Table.Columns)
	assert.Equal(t, 5, res.Table.Len())
	assert.Equal(t, march12, res.Table.Index[0])
	assert.Equal(t, march12.Add(4*time.Minute), res.Table.Index[4])
	assert.Equal(t, 30.0, res.Table.Value(2, "nox"))
	assert.Zero(t, res.SkippedRows)
}

func TestReadDatMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDatFile(t, dir, "42I 031214.dat", "nox", noxSeries(9),
		"14:09  03-12-14  0C100400  garbage")
	logger, handler := testutil.NewTestLogger(t)

	res, err := NewReader(logger, ReaderOptions{}).ReadFile(context.Background(), path, domain.FormatDat)
	require.NoError(t, err)

	assert.Equal(t, 9, res.Table.Len())
	assert.Equal(t, 1, res.SkippedRows)
	require.Len(t, res.RowErrors, 1)
	assert.Equal(t, 20, res.RowErrors[0].Line)
	assert.Contains(t, res.RowErrors[0].Reason, "expected 6 fields")
	assert.True(t, handler.ContainsAttr("error_type", string(apperrors.ErrTypeMalformedRow)))
}

func TestReadDelimited(t *testing.T) {
	series := testutil.MinuteSeries(march12, 4, []string{"o3", "flowa"}, func(i, j int) float64 {
		if i == 2 && j == 0 {
			return math.NaN()
		}
		return float64(i*10 + j)
	})

	tests := []struct {
		name    string
		format  domain.FileFormat
		write   func(dir string) string
		columns []string
	}{
		{
			name:    "csv",
			format:  domain.FormatCSV,
			write:   func(dir string) string { return testutil.WriteCSVFile(t, dir, "49I 031214.csv", series) },
			columns: []string{"o3", "flowa"},
		},
		{
			name:    "vaps text drops record counter",
			format:  domain.FormatVAPSText,
			write:   func(dir string) string { return testutil.WriteVAPSFile(t, dir, "Vaps 031214.txt", series) },
			columns: []string{"o3", "flowa"},
		},
		{
			name:   "xlsx",
			format: domain.FormatXLSX,
			write: func(dir string) string {
				return testutil.WriteXLSXFile(t, dir, "49I 031214.xlsx", "Sheet1", 1, series)
			},
			columns: []string{"o3", "flowa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.write(t.TempDir())

			res, err := NewReader(nil, ReaderOptions{SkipRows: 1}).ReadFile(context.Background(), path, tt.format)
			require.NoError(t, err)

			assert.Equal(t, tt.columns, res.Table.Columns)
			require.Equal(t, 4, res.Table.Len())
			for i := 0; i < 4; i++ {
				assert.Equal(t, march12.Add(time.Duration(i)*time.Minute), res.Table.Index[i])
			}
			assert.Equal(t, 31.0, res.Table.Value(3, "flowa"))
			assert.True(t, math.IsNaN(res.Table.Value(2, "o3")), "empty cell reads as missing")
			assert.Zero(t, res.SkippedRows)
		})
	}
}

func TestReadXLSXCustomSheet(t *testing.T) {
	series := testutil.MinuteSeries(march12, 3, []string{"so2"}, func(i, j int) float64 { return float64(i + 1) })
	path := testutil.WriteXLSXFile(t, t.TempDir(), "43I 031214.xlsx", "Data", 3, series)

	res, err := NewReader(nil, ReaderOptions{Sheet: "Data", SkipRows: 3}).ReadFile(context.Background(), path, domain.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"so2"}, res.Table.Columns)
	assert.Equal(t, []float64{1, 2, 3}, mustColumn(t, res.Table, "so2"))

	_, err = NewReader(nil, ReaderOptions{Sheet: "Missing"}).ReadFile(context.Background(), path, domain.FormatXLSX)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeReadFailure))
}

func TestReadFailures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		path   string
		format domain.FileFormat
	}{
		{
			name:   "missing file",
			path:   filepath.Join(dir, "absent.dat"),
			format: domain.FormatDat,
		},
		{
			name:   "preamble only",
			path:   testutil.WriteFile(t, dir, "short.dat", "NOX Data\n\nline\n"),
			format: domain.FormatDat,
		},
		{
			name:   "header without rows",
			path:   testutil.WriteFile(t, dir, "empty.csv", "Date,o3\n"),
			format: domain.FormatCSV,
		},
		{
			name:   "no valid rows",
			path:   testutil.WriteFile(t, dir, "bad.csv", "Date,o3\nyesterday,1\n"),
			format: domain.FormatCSV,
		},
		{
			name:   "missing timestamp column",
			path:   testutil.WriteFile(t, dir, "Vaps 031214.txt", "Record\tTC1\n1\t20\n"),
			format: domain.FormatVAPSText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(nil, ReaderOptions{}).ReadFile(context.Background(), tt.path, tt.format)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeReadFailure), "got %v", err)
		})
	}
}

func TestReadRowErrorsCapped(t *testing.T) {
	content := "Date,o3\n2014-03-12 14:00:00,1\n"
	for i := 0; i < MaxRowErrors+20; i++ {
		content += "not a date,1\n"
	}
	path := testutil.WriteFile(t, t.TempDir(), "49I 031214.csv", content)

	res, err := NewReader(nil, ReaderOptions{}).ReadFile(context.Background(), path, domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, MaxRowErrors+20, res.SkippedRows)
	assert.Len(t, res.RowErrors, MaxRowErrors)
	assert.Equal(t, 3, res.RowErrors[0].Line)
}

func TestReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(nil, ReaderOptions{}).ReadFile(ctx, "whatever.dat", domain.FormatDat)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2014, 3, 12, 14, 5, 0, 0, time.UTC)

	for _, in := range []string{
		"2014-03-12T14:05:00Z",
		"2014-03-12 14:05:00",
		"2014-03-12 14:05",
		"03-12-14 14:05",
		"03/12/2014 14:05:00",
		"3/12/2014 14:05:00",
		"3/12/2014  14:05",
		"2014/03/12 14:05:00",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseTimestamp(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := ParseTimestamp("12 March")
	assert.Error(t, err)
}

func mustColumn(t *testing.T, table *domain.Table, name string) []float64 {
	t.Helper()
	values, ok := table.Column(name)
	require.True(t, ok, "column %s", name)
	return values
}

func TestReadVAPSWithByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "Vaps 031214.txt",
		"\ufeffRecord\tDate/Time\ttc1\n1\t3/12/2014 14:00:00\t21.5\n2\t3/12/2014 14:00:05\t21.7\n")
	logger, _ := testutil.NewTestLogger(t)

	res, err := NewReader(logger, ReaderOptions{}).ReadFile(context.Background(), path, domain.FormatVAPSText)
	require.NoError(t, err)

	assert.Equal(t, []string{"tc1"}, res.Table.Columns)
	assert.Equal(t, 2, res.Table.Len())
	assert.Equal(t, 21.7, res.Table.Value(1, "tc1"))
}
