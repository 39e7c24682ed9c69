package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"actcli/internal/app"
	"actcli/internal/chart"
	"actcli/internal/dataprocessing"
	apperrors "actcli/internal/errors"
	"actcli/internal/exporter"
	"actcli/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

type diurnalFlags struct {
	*app.IngestFlags
	Columns string
	FromCSV string
	Title   string
	NoChart bool
	Flat    bool
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("diurnal", flag.ContinueOnError)
	flags := diurnalFlags{IngestFlags: app.RegisterIngestFlags(fs)}
	fs.StringVar(&flags.Columns, "columns", "", "comma separated channels to profile (defaults to every channel)")
	fs.StringVar(&flags.FromCSV, "from-csv", "", "redraw the chart of a saved diurnal CSV instead of reading instrument files")
	fs.StringVar(&flags.Title, "title", "", "chart title")
	fs.BoolVar(&flags.NoChart, "no-chart", false, "write the CSV only")
	fs.BoolVar(&flags.Flat, "flat", false, "draw means without the interquartile band")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return app.ExitOK
		}
		return app.ExitConfig
	}
	if flags.PrintVersion("diurnal", stdout) {
		return app.ExitOK
	}

	a, err := app.NewApplication("diurnal", flags.Options())
	if err != nil {
		slog.Error("Failed to start", slog.String("error", err.Error()))
		return app.ExitCode(err)
	}

	return app.ExitCode(a.Run(func(ctx context.Context) error {
		if flags.FromCSV != "" {
			return redraw(a, flags, stdout)
		}
		return profile(ctx, a, flags, stdout)
	}))
}

// profile ingests each requested model's files, joins them, aggregates the
// selected days by time of day and writes the profile CSV and chart
func profile(ctx context.Context, a *app.Application, flags diurnalFlags, stdout io.Writer) error {
	reqs, err := flags.Requests(a.Config.Ingest)
	if err != nil {
		return err
	}

	// A lone -start profiles that one day.
	for i := range reqs {
		if reqs[i].Start != nil && reqs[i].End == nil {
			reqs[i].End = reqs[i].Start
		}
	}

	var (
		models    []domain.Model
		read      []domain.Model
		tables    []*domain.Table
		filesRead int
	)
	for _, req := range reqs {
		models = append(models, req.Model)

		result, err := a.Ingest(ctx, req)
		if err != nil {
			return err
		}
		if result.Report.NoFiles {
			fmt.Fprintf(stdout, "%s: no files found in %s\n", req.Model, req.Dir)
			continue
		}
		read = append(read, req.Model)
		tables = append(tables, result.Table)
		filesRead += result.Report.FilesRead
	}
	if len(tables) == 0 {
		return nil
	}

	sel, err := app.DaySelection(reqs[0])
	if err != nil {
		return err
	}
	p, err := dataprocessing.Aggregate(dataprocessing.JoinModels(read, tables), sel, splitColumns(flags.Columns)...)
	if err != nil {
		return err
	}
	label := modelNames(models)
	if len(p.Buckets) == 0 {
		a.Logger.WarnContext(ctx, "No rows in the selected days",
			slog.String("model", label))
	}

	csvPath := a.Paths.ReportPathFor(models, "diurnal", sel)
	if err := a.Writer.WriteDiurnal(csvPath, p); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d files read, %d time-of-day buckets -> %s\n",
		label, filesRead, len(p.Buckets), csvPath)

	if flags.NoChart || len(p.Buckets) == 0 {
		return nil
	}
	title := flags.Title
	if title == "" && a.Config.Diurnal.Title == "" {
		title = defaultTitle(read, sel)
	}
	return drawProfile(a, p, flags, title, a.Paths.ChartPathFor(models, "diurnal", sel), stdout)
}

// redraw renders the chart of a previously written diurnal CSV
func redraw(a *app.Application, flags diurnalFlags, stdout io.Writer) error {
	f, err := os.Open(flags.FromCSV)
	if err != nil {
		return apperrors.NewReadFailure(flags.FromCSV, err)
	}
	defer f.Close()

	p, err := exporter.DecodeDiurnal(f)
	if err != nil {
		return apperrors.NewReadFailure(flags.FromCSV, err)
	}
	if len(p.Buckets) == 0 {
		return apperrors.NewReadFailure(flags.FromCSV, errors.New("profile has no rows"))
	}

	stem := strings.TrimSuffix(filepath.Base(flags.FromCSV), filepath.Ext(flags.FromCSV))
	return drawProfile(a, p, flags, flags.Title, filepath.Join(a.Paths.ChartsDir, stem+".png"), stdout)
}

func drawProfile(a *app.Application, p *domain.DiurnalProfile, flags diurnalFlags, title, path string, stdout io.Writer) error {
	opts := a.ChartOptions()
	if title != "" {
		opts.Title = title
	}
	if flags.Flat {
		opts.Shaded = false
	}

	panels := chart.DefaultPanels(p)
	if cols := splitColumns(flags.Columns); len(cols) > 0 {
		panels = nil
		for _, c := range cols {
			panels = append(panels, chart.Panel{Column: c})
		}
	}

	c, err := chart.DiurnalPanels(p, panels, opts)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownColumn) {
			return apperrors.NewConfigError("invalid -columns", err)
		}
		return err
	}
	if err := a.SaveChart(path, c); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "chart with %d panels -> %s\n", c.Panels(), path)
	return nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func modelNames(models []domain.Model) string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.String()
	}
	return strings.Join(names, ",")
}

func defaultTitle(models []domain.Model, sel domain.DateSelection) string {
	instruments := make([]string, len(models))
	for i, m := range models {
		spec, _ := m.Spec()
		instruments[i] = spec.Instrument
	}
	title := fmt.Sprintf("%s diurnal profile", strings.Join(instruments, ", "))
	start, end, ok := sel.Bounds()
	if !ok {
		return title
	}
	last := end.AddDate(0, 0, -1)
	if last.Equal(start) {
		return title + ", " + start.Format("2006-01-02")
	}
	return title + ", " + start.Format("2006-01-02") + " to " + last.Format("2006-01-02")
}
