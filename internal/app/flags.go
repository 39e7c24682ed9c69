package app

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"actcli/internal/config"
	"actcli/internal/dataprocessing"
	apperrors "actcli/internal/errors"
	"actcli/pkg/contracts"
	"actcli/pkg/contracts/domain"
)

// CommonFlags are the flags every command accepts
type CommonFlags struct {
	ConfigFile string
	OutputDir  string
	Verbose    bool
	Version    bool
}

// IngestFlags select and read one model's files
type IngestFlags struct {
	CommonFlags

	Dir      string
	Model    string
	Start    string
	End      string
	Interval string
	Gap      string
	Strict   bool
	Workers  int
	Format   string
	Ext      string
	Sheet    string
	SkipRows int
}

// RegisterCommonFlags adds the common flags to fs
func RegisterCommonFlags(fs *flag.FlagSet, f *CommonFlags) {
	fs.StringVar(&f.ConfigFile, "config", "", "config file (defaults to actcli.yaml or $ACT_CONFIG_FILE)")
	fs.StringVar(&f.OutputDir, "out", "", "output directory (defaults to the configured output.dir)")
	fs.BoolVar(&f.Verbose, "v", false, "debug logging")
	fs.BoolVar(&f.Version, "version", false, "print version information and exit")
}

// PrintVersion writes the version banner for command to w if -version was given
func (f *CommonFlags) PrintVersion(command string, w io.Writer) bool {
	if !f.Version {
		return false
	}
	fmt.Fprintln(w, contracts.GetFullVersionString(command))
	return true
}

// RegisterIngestFlags adds the common and ingest flags to fs
func RegisterIngestFlags(fs *flag.FlagSet) *IngestFlags {
	f := &IngestFlags{}
	RegisterCommonFlags(fs, &f.CommonFlags)
	fs.StringVar(&f.Dir, "dir", ".", "directory holding the instrument files")
	fs.StringVar(&f.Model, "model", "", "instrument model: nox, sox, o3 or vaps (diurnal accepts a comma separated list)")
	fs.StringVar(&f.Start, "start", "", "first day to include (YYYY-MM-DD)")
	fs.StringVar(&f.End, "end", "", "last day to include (YYYY-MM-DD)")
	fs.StringVar(&f.Interval, "interval", "", "resample interval such as 1min, 5S or 1H (defaults per model)")
	fs.StringVar(&f.Gap, "gap", "", "gap policy for empty buckets: omit, nan or ffill")
	fs.BoolVar(&f.Strict, "strict", false, "fail on the first unreadable file")
	fs.IntVar(&f.Workers, "workers", 0, "files read concurrently (defaults to ingest.workers)")
	fs.StringVar(&f.Format, "format", "", "override the model's file format: dat, xlsx, csv or txt")
	fs.StringVar(&f.Ext, "ext", "", "override the model's file extension")
	fs.StringVar(&f.Sheet, "sheet", "", "xlsx sheet name (defaults to ingest.xlsx_sheet)")
	fs.IntVar(&f.SkipRows, "skip-rows", -1, "xlsx rows above the header (defaults to ingest.xlsx_skip_rows)")
	return f
}

// Options returns the application options selected by the flags
func (f *CommonFlags) Options() Options {
	return Options{ConfigFile: f.ConfigFile, OutputDir: f.OutputDir, Verbose: f.Verbose}
}

// Request builds a pipeline request from the flags, falling back to cfg for
// everything left unset. requireModel rejects an empty -model.
func (f *IngestFlags) Request(cfg config.IngestConfig, requireModel bool) (dataprocessing.Request, error) {
	var req dataprocessing.Request

	if f.Model != "" || requireModel {
		model, err := domain.ParseModel(f.Model)
		if err != nil {
			return req, apperrors.NewConfigError("invalid -model", err)
		}
		req.Model = model
	}

	start, err := ParseDate(f.Start)
	if err != nil {
		return req, err
	}
	end, err := ParseDate(f.End)
	if err != nil {
		return req, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return req, apperrors.NewConfigError("invalid date range",
			fmt.Errorf("-end %s is before -start %s", f.End, f.Start))
	}

	gap, err := dataprocessing.ParseGapPolicy(firstNonEmpty(f.Gap, cfg.Gap))
	if err != nil {
		return req, apperrors.NewConfigError("invalid -gap", err)
	}

	interval := f.Interval
	if interval == "" && req.Model != 0 {
		d, err := cfg.IntervalFor(req.Model)
		if err != nil {
			return req, err
		}
		interval = d.String()
	}

	if f.Format != "" {
		format, err := domain.ParseFileFormat(f.Format)
		if err != nil {
			return req, apperrors.NewConfigError("invalid -format", err)
		}
		req.Format = format
	}

	workers := f.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	skipRows := f.SkipRows
	if skipRows < 0 {
		skipRows = cfg.XLSXSkipRows
	}

	req.Dir = f.Dir
	req.Start = start
	req.End = end
	req.Interval = interval
	req.Gap = gap
	req.Strict = f.Strict || cfg.Strict
	req.Workers = workers
	req.Extension = strings.TrimPrefix(f.Ext, ".")
	req.Sheet = firstNonEmpty(f.Sheet, cfg.XLSXSheet)
	req.SkipRows = skipRows
	return req, nil
}

// Requests builds one request per model named in a comma separated -model
// such as "nox,sox,o3". A model named twice is read once.
func (f *IngestFlags) Requests(cfg config.IngestConfig) ([]dataprocessing.Request, error) {
	names := strings.Split(f.Model, ",")
	reqs := make([]dataprocessing.Request, 0, len(names))
	seen := make(map[domain.Model]bool)
	for _, name := range names {
		one := *f
		one.Model = strings.TrimSpace(name)
		req, err := one.Request(cfg, true)
		if err != nil {
			return nil, err
		}
		if seen[req.Model] {
			continue
		}
		seen[req.Model] = true
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
