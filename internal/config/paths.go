package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"actcli/pkg/contracts/domain"
)

// Paths contains every location a run writes to.
// All of them hang off the configured output directory; nothing is resolved
// against the process working directory after construction.
type Paths struct {
	OutputDir  string
	ReportsDir string
	ChartsDir  string
	MetricsDir string
}

// NewPaths resolves the output layout rooted at outputDir
func NewPaths(outputDir string) (*Paths, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is empty")
	}
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	return &Paths{
		OutputDir:  abs,
		ReportsDir: filepath.Join(abs, ReportsSubdir),
		ChartsDir:  filepath.Join(abs, ChartsSubdir),
		MetricsDir: filepath.Join(abs, MetricsSubdir),
	}, nil
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.ReportsDir, p.ChartsDir, p.MetricsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ReportPath returns the CSV path for a model report of the given kind
func (p *Paths) ReportPath(m domain.Model, kind string, sel domain.DateSelection) string {
	return p.ReportPathFor([]domain.Model{m}, kind, sel)
}

// ReportPathFor returns the CSV path for a report covering several models
func (p *Paths) ReportPathFor(models []domain.Model, kind string, sel domain.DateSelection) string {
	return filepath.Join(p.ReportsDir, outputName(models, kind, sel)+".csv")
}

// ChartPath returns the PNG path for a model chart of the given kind
func (p *Paths) ChartPath(m domain.Model, kind string, sel domain.DateSelection) string {
	return p.ChartPathFor([]domain.Model{m}, kind, sel)
}

// ChartPathFor returns the PNG path for a chart covering several models
func (p *Paths) ChartPathFor(models []domain.Model, kind string, sel domain.DateSelection) string {
	return filepath.Join(p.ChartsDir, outputName(models, kind, sel)+".png")
}

// MetricsPath returns the Prometheus textfile path for a command
func (p *Paths) MetricsPath(command string) string {
	return filepath.Join(p.MetricsDir, command+".prom")
}

// outputName builds names like "nox_diurnal_20140312-20140314" or
// "nox-o3_diurnal" for several models
func outputName(models []domain.Model, kind string, sel domain.DateSelection) string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.String()
	}
	name := strings.Join(names, "-") + "_" + kind
	start, end, ok := sel.Bounds()
	if !ok {
		return name
	}
	last := end.Add(-24 * time.Hour)
	if last.Equal(start) {
		return name + "_" + start.Format("20060102")
	}
	return name + "_" + start.Format("20060102") + "-" + last.Format("20060102")
}

// LogPathResolution logs the resolved output layout
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Output paths resolved",
		slog.String("output_dir", p.OutputDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("metrics_dir", p.MetricsDir))
}
