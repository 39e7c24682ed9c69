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
	"actcli/internal/dataprocessing"
	"actcli/internal/exporter"
	"actcli/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

type processorFlags struct {
	*app.IngestFlags
	File string
	BOM  bool
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("processor", flag.ContinueOnError)
	flags := processorFlags{IngestFlags: app.RegisterIngestFlags(fs)}
	fs.StringVar(&flags.File, "file", "", "process one file instead of selecting from -dir")
	fs.BoolVar(&flags.BOM, "bom", false, "prefix the CSV with a UTF-8 byte order mark")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return app.ExitOK
		}
		return app.ExitConfig
	}
	if flags.PrintVersion("processor", stdout) {
		return app.ExitOK
	}

	a, err := app.NewApplication("processor", flags.Options())
	if err != nil {
		slog.Error("Failed to start", slog.String("error", err.Error()))
		return app.ExitCode(err)
	}

	return app.ExitCode(a.Run(func(ctx context.Context) error {
		return process(ctx, a, flags, stdout)
	}))
}

// process reads the selected files, merges and resamples them and writes
// the table to the reports directory
func process(ctx context.Context, a *app.Application, flags processorFlags, stdout io.Writer) error {
	req, err := flags.Request(a.Config.Ingest, flags.File == "")
	if err != nil {
		return err
	}

	var (
		result *dataprocessing.Result
		path   string
	)
	if flags.File != "" {
		result, err = a.Pipeline.ReadSingle(ctx, flags.File, req)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(flags.File), filepath.Ext(flags.File))
		path = filepath.Join(a.Paths.ReportsDir, stem+"_resampled.csv")
	} else {
		result, err = a.Ingest(ctx, req)
		if err != nil {
			return err
		}
		if result.Report.NoFiles {
			fmt.Fprintf(stdout, "%s: no files found in %s\n", req.Model, req.Dir)
			return nil
		}
		sel, err := app.DaySelection(req)
		if err != nil {
			return err
		}
		path = a.Paths.ReportPath(req.Model, "merged", sel)
	}

	if err := a.Writer.WriteTable(path, result.Table, flags.BOM); err != nil {
		return err
	}

	printReport(stdout, req.Model, result, path)
	return nil
}

func printReport(w io.Writer, model domain.Model, result *dataprocessing.Result, path string) {
	r := result.Report
	name := model.String()
	if model == 0 {
		name = "file"
	}
	fmt.Fprintf(w, "%s: %d files selected, %d read, %d failed, %d rows skipped\n",
		name, r.FilesSelected, r.FilesRead, len(r.FailedFiles), r.SkippedRows)
	for _, f := range r.FailedFiles {
		fmt.Fprintf(w, "  failed %s: %v\n", f.Name, f.Err)
	}
	if len(r.Unparseable) > 0 {
		fmt.Fprintf(w, "  %d files excluded by unparseable date\n", len(r.Unparseable))
	}
	fmt.Fprintf(w, "%d rows at %s -> %s\n", result.Table.Len(), result.Interval, path)

	stats := dataprocessing.Summarize(result.Table)
	if stats.Rows > 0 {
		fmt.Fprintf(w, "  %s to %s, %d columns, %d missing values\n",
			stats.Start.Format(exporter.TimestampLayout), stats.End.Format(exporter.TimestampLayout),
			stats.Columns, stats.MissingValues)
	}
}
