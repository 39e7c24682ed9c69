package app

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actcli/internal/config"
	"actcli/internal/dataprocessing"
	apperrors "actcli/internal/errors"
	"actcli/internal/infrastructure"
	"actcli/internal/shared/testutil"
	"actcli/pkg/contracts"
	"actcli/pkg/contracts/domain"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "config error", err: apperrors.NewConfigError("bad model", domain.ErrInvalidModel), want: ExitConfig},
		{name: "wrapped config error", err: errors.Join(errors.New("run"), apperrors.NewConfigError("bad", nil)), want: ExitConfig},
		{name: "read failure", err: apperrors.NewReadFailure("a.dat", errors.New("eof")), want: ExitFatal},
		{name: "plain error", err: errors.New("boom"), want: ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2014, 3, 12, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2014-03-12", "2014/03/12", "03/12/2014", "031214"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		require.NotNil(t, got)
		assert.True(t, want.Equal(*got), s)
	}

	got, err := ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDate("12 March")
	assert.True(t, apperrors.IsConfigError(err))
}

func parseIngestFlags(t *testing.T, args ...string) *IngestFlags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterIngestFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

func TestIngestFlagsRequest(t *testing.T) {
	cfg := config.Default().Ingest

	req, err := parseIngestFlags(t, "-dir", "data", "-model", "nox", "-start", "2014-03-12").Request(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ModelNOx, req.Model)
	assert.Equal(t, "data", req.Dir)
	assert.Equal(t, "1m0s", req.Interval)
	assert.Equal(t, dataprocessing.GapOmit, req.Gap)
	assert.Equal(t, cfg.Workers, req.Workers)
	assert.Equal(t, cfg.XLSXSheet, req.Sheet)
	assert.Equal(t, cfg.XLSXSkipRows, req.SkipRows)
	require.NotNil(t, req.Start)
	assert.Nil(t, req.End)

	req, err = parseIngestFlags(t, "-model", "vaps", "-gap", "ffill", "-workers", "2", "-strict", "-skip-rows", "0", "-ext", ".TXT").Request(cfg, true)
	require.NoError(t, err)
	assert.Equal(t, "5s", req.Interval)
	assert.Equal(t, dataprocessing.GapForwardFill, req.Gap)
	assert.Equal(t, 2, req.Workers)
	assert.True(t, req.Strict)
	assert.Equal(t, 0, req.SkipRows)
	assert.Equal(t, "TXT", req.Extension)

	req, err = parseIngestFlags(t, "-format", "xlsx", "-interval", "15T").Request(cfg, false)
	require.NoError(t, err)
	assert.Equal(t, domain.Model(0), req.Model)
	assert.Equal(t, domain.FormatXLSX, req.Format)
	assert.Equal(t, "15T", req.Interval)
}

func TestIngestFlagsRequestErrors(t *testing.T) {
	cfg := config.Default().Ingest
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing model", args: nil},
		{name: "unknown model", args: []string{"-model", "co2"}},
		{name: "bad start", args: []string{"-model", "o3", "-start", "yesterday"}},
		{name: "end before start", args: []string{"-model", "o3", "-start", "2014-03-14", "-end", "2014-03-12"}},
		{name: "bad gap", args: []string{"-model", "o3", "-gap", "linear"}},
		{name: "bad format", args: []string{"-model", "o3", "-format", "parquet"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIngestFlags(t, tt.args...).Request(cfg, true)
			require.Error(t, err)
			assert.Equal(t, ExitConfig, ExitCode(err))
		})
	}
}

func TestIngestFlagsRequests(t *testing.T) {
	cfg := config.Default().Ingest

	tests := []struct {
		name    string
		model   string
		want    []domain.Model
		wantErr bool
	}{
		{name: "single", model: "o3", want: []domain.Model{domain.ModelO3}},
		{name: "list", model: "nox,sox,o3", want: []domain.Model{domain.ModelNOx, domain.ModelSOx, domain.ModelO3}},
		{name: "spaces and repeats", model: " nox , o3,nox", want: []domain.Model{domain.ModelNOx, domain.ModelO3}},
		{name: "unknown entry", model: "nox,co2", wantErr: true},
		{name: "empty entry", model: "nox,", wantErr: true},
		{name: "missing", model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, err := parseIngestFlags(t, "-dir", "data", "-model", tt.model).Requests(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitConfig, ExitCode(err))
				return
			}
			require.NoError(t, err)
			var got []domain.Model
			for _, req := range reqs {
				got = append(got, req.Model)
				assert.Equal(t, "data", req.Dir)
				assert.NotEmpty(t, req.Interval)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestApplication(t *testing.T) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	dir := t.TempDir()
	configFile := testutil.WriteFile(t, dir, "actcli.yaml", "ingest:\n  workers: 3\n")

	logger, handler := testutil.NewTestLogger(t)
	a, err := NewApplication("processor", Options{
		ConfigFile: configFile,
		OutputDir:  filepath.Join(dir, "out"),
		Logger:     logger,
	})
	require.NoError(t, err)
	return a, handler
}

func TestNewApplication(t *testing.T) {
	a, _ := newTestApplication(t)

	assert.Equal(t, 3, a.Config.Ingest.Workers)
	assert.DirExists(t, a.Paths.ReportsDir)
	assert.DirExists(t, a.Paths.ChartsDir)
	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Writer)
	assert.NotNil(t, a.Telemetry.Metrics)
}

func TestNewApplicationBadConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := testutil.WriteFile(t, dir, "actcli.yaml", "ingest:\n  gap: linear\n")
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewApplication("processor", Options{ConfigFile: configFile, OutputDir: dir, Logger: logger})
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestApplicationRun(t *testing.T) {
	a, handler := newTestApplication(t)

	var runID string
	err := a.Run(func(ctx context.Context) error {
		runID = infrastructure.GetRunID(ctx)
		result, err := a.Pipeline.Run(ctx, dataprocessing.Request{Dir: t.TempDir(), Model: domain.ModelO3})
		if err == nil {
			assert.True(t, result.Report.NoFiles)
		}
		return err
	})
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Command complete")

	metrics, err := os.ReadFile(a.Paths.MetricsPath("processor"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "actcli_run_duration")
}

func TestApplicationRunError(t *testing.T) {
	a, handler := newTestApplication(t)

	want := apperrors.NewReadFailure("a.dat", errors.New("truncated"))
	err := a.Run(func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
	assert.Equal(t, ExitFatal, ExitCode(err))
	testutil.AssertLogContains(t, handler, slog.LevelError, "Command failed")
	assert.True(t, handler.ContainsAttr("error_type", "READ_FAILURE"))
	assert.True(t, handler.ContainsAttr("error", want.Error()))
}

func TestPrintVersion(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var f CommonFlags
	RegisterCommonFlags(fs, &f)

	var buf bytes.Buffer
	require.NoError(t, fs.Parse(nil))
	assert.False(t, f.PrintVersion("diurnal", &buf))
	assert.Empty(t, buf.String())

	require.NoError(t, fs.Parse([]string{"-version"}))
	assert.True(t, f.PrintVersion("diurnal", &buf))
	assert.Contains(t, buf.String(), "diurnal v"+contracts.Version)
}
