package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"actcli/internal/app"
	"actcli/internal/chart"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("debugplot", flag.ContinueOnError)
	flags := app.RegisterIngestFlags(fs)
	title := fs.String("title", "", "chart title (defaults to the instrument name)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return app.ExitOK
		}
		return app.ExitConfig
	}
	if flags.PrintVersion("debugplot", stdout) {
		return app.ExitOK
	}

	a, err := app.NewApplication("debugplot", flags.Options())
	if err != nil {
		slog.Error("Failed to start", slog.String("error", err.Error()))
		return app.ExitCode(err)
	}

	return app.ExitCode(a.Run(func(ctx context.Context) error {
		return plot(ctx, a, flags, *title, stdout)
	}))
}

// plot draws the instrument's internal and gas channels over the selected period
func plot(ctx context.Context, a *app.Application, flags *app.IngestFlags, title string, stdout io.Writer) error {
	req, err := flags.Request(a.Config.Ingest, true)
	if err != nil {
		return err
	}

	result, err := a.Ingest(ctx, req)
	if err != nil {
		return err
	}
	if result.Report.NoFiles {
		fmt.Fprintf(stdout, "%s: no files found in %s\n", req.Model, req.Dir)
		return nil
	}

	opts := a.ChartOptions()
	if title == "" {
		spec, _ := req.Model.Spec()
		title = spec.Instrument + " debug"
	}
	opts.Title = title

	c, err := chart.DebugPlot(result.Table, req.Model, opts)
	if err != nil {
		return err
	}

	sel, err := app.DaySelection(req)
	if err != nil {
		return err
	}
	path := a.Paths.ChartPath(req.Model, "debug", sel)
	if err := a.SaveChart(path, c); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d rows, %d panels -> %s\n", req.Model, result.Table.Len(), c.Panels(), path)
	return nil
}
