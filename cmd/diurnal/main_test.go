package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actcli/internal/app"
	"actcli/internal/shared/testutil"
	"actcli/pkg/contracts/domain"
)

var march12 = time.Date(2014, 3, 12, 14, 0, 0, 0, time.UTC)

// setup writes two days of O3 files holding 10 and 20 at every minute
func setup(t *testing.T) (string, string, []string) {
	t.Helper()
	root := t.TempDir()
	in := filepath.Join(root, "in")
	out := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(in, 0755))
	for d, v := range []float64{10, 20} {
		s := testutil.MinuteSeries(march12.AddDate(0, 0, d), 3, []string{"o3", "bncht"}, func(i, j int) float64 {
			return v + float64(j)
		})
		testutil.WriteDatFile(t, in, "49I 03"+[]string{"12", "13"}[d]+"14.dat", "o3", s)
	}
	configFile := testutil.WriteFile(t, root, "actcli.yaml", "logging:\n  level: error\ndiurnal:\n  width_inches: 4\n  height_inches: 3\n")
	return in, out, []string{"-config", configFile, "-out", out, "-dir", in, "-model", "o3"}
}

func TestRunProfilesDateRange(t *testing.T) {
	_, out, common := setup(t)

	var stdout bytes.Buffer
	code := run(append(common, "-start", "2014-03-12", "-end", "2014-03-13"), &stdout)
	require.Equal(t, app.ExitOK, code)

	content, err := os.ReadFile(filepath.Join(out, "reports", "o3_diurnal_20140312-20140313.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Equal(t, "time,channel,count,mean,std,min,25%,50%,75%,max", lines[0])
	assert.Len(t, lines, 1+3*2)
	assert.True(t, strings.HasPrefix(lines[1], "14:00,o3,2,15,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "14:00,bncht,2,16,"), lines[2])

	assert.FileExists(t, filepath.Join(out, "charts", "o3_diurnal_20140312-20140313.png"))
	assert.Contains(t, stdout.String(), "3 time-of-day buckets")
}

func TestRunSingleDay(t *testing.T) {
	_, out, common := setup(t)

	var stdout bytes.Buffer
	code := run(append(common, "-start", "2014-03-13", "-columns", "o3", "-no-chart"), &stdout)
	require.Equal(t, app.ExitOK, code)

	content, err := os.ReadFile(filepath.Join(out, "reports", "o3_diurnal_20140313.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "14:02,o3,1,20,,20,20,20,20,20\n")
	assert.NotContains(t, string(content), "bncht")
	assert.NoFileExists(t, filepath.Join(out, "charts", "o3_diurnal_20140313.png"))
}

func TestRunSeveralModels(t *testing.T) {
	in, out, common := setup(t)
	for d, day := range []string{"12", "13"} {
		start := march12.AddDate(0, 0, d)
		nox := testutil.MinuteSeries(start, 3, []string{"no", "nox", "intt"}, func(i, j int) float64 {
			return []float64{4, 10, 30}[j] * float64(d+1)
		})
		sox := testutil.MinuteSeries(start, 3, []string{"so2", "intt"}, func(i, j int) float64 {
			return []float64{2, 31}[j] * float64(d+1)
		})
		testutil.WriteDatFile(t, in, "42I 03"+day+"14.dat", "nox", nox)
		testutil.WriteDatFile(t, in, "43I 03"+day+"14.dat", "sox", sox)
	}

	var stdout bytes.Buffer
	code := run(append(common, "-model", "nox,sox,o3", "-start", "2014-03-12", "-end", "2014-03-13"), &stdout)
	require.Equal(t, app.ExitOK, code, stdout.String())

	content, err := os.ReadFile(filepath.Join(out, "reports", "nox-sox-o3_diurnal_20140312-20140313.csv"))
	require.NoError(t, err)
	csv := string(content)
	assert.Contains(t, csv, "14:00,nox,2,15,")
	assert.Contains(t, csv, "14:00,no2,2,9,")
	assert.Contains(t, csv, "14:00,so2,2,3,")
	assert.Contains(t, csv, "14:00,o3,2,15,")
	assert.Contains(t, csv, "14:00,intt_nox,2,45,")
	assert.Contains(t, csv, "14:00,intt_sox,2,46.5,")

	assert.FileExists(t, filepath.Join(out, "charts", "nox-sox-o3_diurnal_20140312-20140313.png"))
	assert.Contains(t, stdout.String(), "nox,sox,o3: 6 files read, 3 time-of-day buckets")
	assert.Contains(t, stdout.String(), "chart with 3 panels")
}

func TestRunSeveralModelsSkipsMissing(t *testing.T) {
	_, out, common := setup(t)

	var stdout bytes.Buffer
	code := run(append(common, "-model", "sox,o3", "-no-chart"), &stdout)
	require.Equal(t, app.ExitOK, code)

	assert.Contains(t, stdout.String(), "sox: no files found")
	content, err := os.ReadFile(filepath.Join(out, "reports", "sox-o3_diurnal.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "14:00,o3,2,15,")
	assert.NotContains(t, string(content), "so2")
}

func TestRunFromCSV(t *testing.T) {
	_, out, common := setup(t)
	require.Equal(t, app.ExitOK, run(append(common, "-no-chart"), &bytes.Buffer{}))

	saved := filepath.Join(out, "reports", "o3_diurnal.csv")
	require.FileExists(t, saved)

	var stdout bytes.Buffer
	code := run(append(common, "-from-csv", saved, "-flat", "-title", "Redrawn"), &stdout)
	require.Equal(t, app.ExitOK, code)
	assert.FileExists(t, filepath.Join(out, "charts", "o3_diurnal.png"))
	assert.Contains(t, stdout.String(), "chart with 1 panels")
}

func TestRunExitCodes(t *testing.T) {
	_, out, common := setup(t)
	missing := filepath.Join(out, "missing.csv")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown column", args: append(common, "-columns", "nox"), want: app.ExitConfig},
		{name: "bad date", args: append(common, "-start", "March"), want: app.ExitConfig},
		{name: "missing csv", args: append(common, "-from-csv", missing), want: app.ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args, &bytes.Buffer{}))
		})
	}
}

func TestDefaultTitle(t *testing.T) {
	sel, err := domain.NewDateSelection(march12, march12.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, "49I diurnal profile, 2014-03-12 to 2014-03-14", defaultTitle([]domain.Model{domain.ModelO3}, sel))
	assert.Equal(t, "49I diurnal profile", defaultTitle([]domain.Model{domain.ModelO3}, domain.DateSelection{}))
	assert.Equal(t, "42I, 43I, 49I diurnal profile",
		defaultTitle([]domain.Model{domain.ModelNOx, domain.ModelSOx, domain.ModelO3}, domain.DateSelection{}))
}
