package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actcli/pkg/contracts/domain"
)

func TestNewPaths(t *testing.T) {
	tempDir := t.TempDir()

	paths, err := NewPaths(tempDir)
	require.NoError(t, err)
	assert.Equal(t, tempDir, paths.OutputDir)
	assert.Equal(t, filepath.Join(tempDir, "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(tempDir, "charts"), paths.ChartsDir)
	assert.Equal(t, filepath.Join(tempDir, "metrics"), paths.MetricsDir)

	_, err = NewPaths("  ")
	assert.Error(t, err)

	rel, err := NewPaths("out")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(rel.OutputDir))
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := NewPaths(filepath.Join(t.TempDir(), "nested", "output"))
	require.NoError(t, err)

	t.Run("creates all directories", func(t *testing.T) {
		require.NoError(t, paths.EnsureDirectories())
		assert.DirExists(t, paths.OutputDir)
		assert.DirExists(t, paths.ReportsDir)
		assert.DirExists(t, paths.ChartsDir)
		assert.DirExists(t, paths.MetricsDir)
	})

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, paths.EnsureDirectories())
	})
}

func TestOutputNames(t *testing.T) {
	paths := &Paths{ReportsDir: "/out/reports", ChartsDir: "/out/charts", MetricsDir: "/out/metrics"}
	d1 := time.Date(2014, 3, 12, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2014, 3, 14, 0, 0, 0, 0, time.UTC)

	none, _ := domain.NewDateSelection()
	single, _ := domain.NewDateSelection(d1)
	rng, _ := domain.NewDateSelection(d1, d2)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "no dates", got: paths.ReportPath(domain.ModelNOx, "merged", none), want: "/out/reports/nox_merged.csv"},
		{name: "single day", got: paths.ReportPath(domain.ModelO3, "diurnal", single), want: "/out/reports/o3_diurnal_20140312.csv"},
		{name: "range", got: paths.ChartPath(domain.ModelSOx, "diurnal", rng), want: "/out/charts/sox_diurnal_20140312-20140314.png"},
		{name: "several models", got: paths.ReportPathFor([]domain.Model{domain.ModelNOx, domain.ModelSOx, domain.ModelO3}, "diurnal", rng), want: "/out/reports/nox-sox-o3_diurnal_20140312-20140314.csv"},
		{name: "several models chart", got: paths.ChartPathFor([]domain.Model{domain.ModelNOx, domain.ModelO3}, "diurnal", none), want: "/out/charts/nox-o3_diurnal.png"},
		{name: "metrics", got: paths.MetricsPath("processor"), want: "/out/metrics/processor.prom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), tt.got)
		})
	}
}
