package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	apperrors "actcli/internal/errors"
	"actcli/internal/files"
	"actcli/internal/infrastructure"
	"actcli/pkg/contracts/domain"
)

// DefaultWorkers is the read concurrency used when a request leaves it unset
const DefaultWorkers = 4

// Request describes one ingestion run
type Request struct {
	Dir   string
	Model domain.Model
	Start *time.Time
	End   *time.Time
	// Interval is a resample interval such as "1min" or "5S".
	// Empty uses the model's default.
	Interval string
	Gap      GapPolicy
	Strict   bool
	Workers  int
	// Format and Extension override the model's file layout when set.
	Format    domain.FileFormat
	Extension string
	Sheet     string
	SkipRows  int
}

// FileFailure names a file that could not be read
type FileFailure struct {
	Name string
	Err  error
}

// Report tallies what happened to the selected files
type Report struct {
	FilesSelected int
	FilesRead     int
	FailedFiles   []FileFailure
	RowsRead      int
	SkippedRows   int
	Unparseable   []string
	NoFiles       bool
	Resample      ResampleStats
}

// Result is the output of a run
type Result struct {
	Table    *domain.Table
	Interval time.Duration
	Report   Report
}

// Pipeline runs select, read, merge and resample for one model
type Pipeline struct {
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewPipeline creates a pipeline. metrics may be nil.
func NewPipeline(logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Pipeline {
	return &Pipeline{
		logger:  infrastructure.WithComponent(logger, "pipeline"),
		metrics: metrics,
	}
}

type runPlan struct {
	spec     domain.ModelSpec
	format   domain.FileFormat
	interval time.Duration
	workers  int
}

// plan resolves the request against the model table. A zero model is
// accepted for single files and applies no model rules.
func (p *Pipeline) plan(req Request, single bool) (*runPlan, error) {
	spec, ok := req.Model.Spec()
	if !ok && single && req.Model == 0 {
		spec, ok = domain.ModelSpec{Name: "file", Format: req.Format, DefaultInterval: time.Minute}, true
	}
	if !ok {
		return nil, apperrors.NewConfigError("invalid request",
			fmt.Errorf("%w: %s", domain.ErrInvalidModel, req.Model))
	}

	pl := &runPlan{spec: spec, format: spec.Format, interval: spec.DefaultInterval, workers: req.Workers}
	if req.Format != 0 {
		pl.format = req.Format
	}
	if req.Interval != "" {
		d, err := domain.ParseInterval(req.Interval)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid request", err)
		}
		pl.interval = d
	}
	if pl.workers <= 0 {
		pl.workers = DefaultWorkers
	}
	return pl, nil
}

// Run selects the model's files in req.Dir, reads them concurrently, merges
// them in selection order and resamples the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.run", attribute.String("model", req.Model.String()))
	defer span.End()

	pl, err := p.plan(req, false)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	ext := pl.spec.Extension
	if req.Extension != "" {
		ext = req.Extension
	}

	var sel *files.Selection
	err = p.stage(ctx, "select", pl.spec.Name, func(ctx context.Context) error {
		var err error
		sel, err = files.NewSelector(p.logger).Select(ctx, files.Criteria{
			Dir:       req.Dir,
			Substring: pl.spec.Instrument,
			Extension: ext,
			Start:     req.Start,
			End:       req.End,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Table: domain.NewTable(nil), Interval: pl.interval}
	result.Report.FilesSelected = len(sel.Files)
	result.Report.Unparseable = sel.Unparseable
	if sel.Empty() {
		result.Report.NoFiles = true
		span.SetAttributes(attribute.Bool("no_files", true))
		p.recordFiles(ctx, pl.spec.Name, result.Report)
		return result, nil
	}

	reader := NewReader(p.logger, ReaderOptions{Sheet: req.Sheet, SkipRows: req.SkipRows})
	tables, err := p.readAll(ctx, reader, sel.Files, pl, req.Strict, &result.Report)
	if err != nil {
		p.recordFiles(ctx, pl.spec.Name, result.Report)
		return nil, err
	}

	if err := p.finish(ctx, pl, tables, req.Gap, result); err != nil {
		return nil, err
	}

	p.recordFiles(ctx, pl.spec.Name, result.Report)
	p.logger.InfoContext(ctx, "Pipeline complete",
		slog.String("model", pl.spec.Name),
		slog.Int("files_selected", result.Report.FilesSelected),
		slog.Int("files_read", result.Report.FilesRead),
		slog.Int("files_failed", len(result.Report.FailedFiles)),
		slog.Int("rows_skipped", result.Report.SkippedRows),
		slog.Int("rows", result.Table.Len()))
	return result, nil
}

// ReadSingle runs read, dedup and resample on one file of any supported format
func (p *Pipeline) ReadSingle(ctx context.Context, path string, req Request) (*Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	ctx, span := infrastructure.StartSpan(ctx, "pipeline.read_single", attribute.String("file", filepath.Base(path)))
	defer span.End()

	if req.Format == 0 {
		format, err := domain.ParseFileFormat(filepath.Ext(path))
		if err != nil {
			return nil, apperrors.NewConfigError("cannot infer file format", err).WithContext("file", path)
		}
		req.Format = format
	}
	pl, err := p.plan(req, true)
	if err != nil {
		return nil, err
	}

	result := &Result{Table: domain.NewTable(nil), Interval: pl.interval}
	result.Report.FilesSelected = 1
	reader := NewReader(p.logger, ReaderOptions{Sheet: req.Sheet, SkipRows: req.SkipRows})
	tables, err := p.readAll(ctx, reader, []files.Candidate{{Name: filepath.Base(path), Path: path}}, pl, true, &result.Report)
	if err != nil {
		p.recordFiles(ctx, pl.spec.Name, result.Report)
		return nil, err
	}
	if err := p.finish(ctx, pl, tables, req.Gap, result); err != nil {
		return nil, err
	}
	p.recordFiles(ctx, pl.spec.Name, result.Report)
	return result, nil
}

type readOutcome struct {
	table   *domain.Table
	skipped int
	err     error
}

// readAll reads candidates with at most pl.workers in flight. Outcomes are
// stored by position so the merge order follows the selection order.
func (p *Pipeline) readAll(ctx context.Context, reader *Reader, candidates []files.Candidate, pl *runPlan, strict bool, report *Report) ([]*domain.Table, error) {
	outcomes := make([]readOutcome, len(candidates))

	err := p.stage(ctx, "read", pl.spec.Name, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(pl.workers)

		for i, c := range candidates {
			g.Go(func() error {
				table, skipped, err := p.readOne(gctx, reader, c, pl)
				if err != nil {
					if strict || !apperrors.IsType(err, apperrors.ErrTypeReadFailure) {
						return err
					}
					outcomes[i].err = err
					return nil
				}
				outcomes[i] = readOutcome{table: table, skipped: skipped}
				return nil
			})
		}
		return g.Wait()
	})

	tables := make([]*domain.Table, 0, len(candidates))
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			report.FailedFiles = append(report.FailedFiles, FileFailure{Name: candidates[i].Name, Err: o.err})
			p.logger.WarnContext(ctx, "Skipping unreadable file",
				slog.String("file", candidates[i].Name),
				slog.String("error", o.err.Error()),
				slog.String("error_type", string(apperrors.ErrTypeReadFailure)))
		case o.table != nil:
			report.FilesRead++
			report.RowsRead += o.table.Len()
			report.SkippedRows += o.skipped
			tables = append(tables, o.table)
		}
	}
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (p *Pipeline) readOne(ctx context.Context, reader *Reader, c files.Candidate, pl *runPlan) (*domain.Table, int, error) {
	ctx, span := infrastructure.StartSpan(ctx, "read_file", attribute.String("file", c.Name))
	defer span.End()

	res, err := reader.ReadFile(ctx, c.Path, pl.format)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	table, err := ApplyModelRules(res.Table, pl.spec)
	if err != nil {
		err = apperrors.NewReadFailure(c.Path, err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int("rows", table.Len()), attribute.Int("skipped_rows", res.SkippedRows))
	return table, res.SkippedRows, nil
}

func (p *Pipeline) finish(ctx context.Context, pl *runPlan, tables []*domain.Table, gap GapPolicy, result *Result) error {
	if len(tables) == 0 {
		return nil
	}

	var merged *domain.Table
	_ = p.stage(ctx, "merge", pl.spec.Name, func(context.Context) error {
		merged = Merge(tables...)
		return nil
	})

	return p.stage(ctx, "resample", pl.spec.Name, func(context.Context) error {
		out, stats, err := ResampleWithStats(merged, pl.interval, gap)
		if err != nil {
			return apperrors.NewConfigError("cannot resample", err)
		}
		result.Table = DropNonPositive(out, pl.spec)
		result.Report.Resample = stats
		p.logger.DebugContext(ctx, "Resampled",
			slog.String("interval", pl.interval.String()),
			slog.String("gap", gap.String()),
			slog.Int("input_rows", stats.InputRows),
			slog.Int("buckets", stats.Buckets),
			slog.Int("empty_buckets", stats.EmptyBuckets))
		return nil
	})
}

// stage runs fn inside a span and records its duration
func (p *Pipeline) stage(ctx context.Context, name, model string, fn func(context.Context) error) error {
	ctx, span := infrastructure.StartSpan(ctx, name, attribute.String("model", model))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(ctx, name, model, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

func (p *Pipeline) recordFiles(ctx context.Context, model string, r Report) {
	p.metrics.RecordFiles(ctx, model, infrastructure.FileCounts{
		Selected:    r.FilesSelected,
		Read:        r.FilesRead,
		Failed:      len(r.FailedFiles),
		RowsRead:    r.RowsRead,
		RowsSkipped: r.SkippedRows,
		Unparseable: len(r.Unparseable),
	})
}
