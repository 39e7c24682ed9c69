package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the ingestion counters of a run.
// All Record methods are no-ops on a nil receiver.
type PipelineMetrics struct {
	filesSelected    metric.Int64Counter
	filesRead        metric.Int64Counter
	filesFailed      metric.Int64Counter
	rowsRead         metric.Int64Counter
	rowsSkipped      metric.Int64Counter
	unparseableNames metric.Int64Counter
	stageDuration    metric.Float64Histogram

	heapAlloc  metric.Int64Gauge
	goroutines metric.Int64Gauge
	runtime    metric.Float64Gauge
}

// NewPipelineMetrics creates the ingestion instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.filesSelected, "actcli_files_selected", "Files matched by the selector"},
		{&m.filesRead, "actcli_files_read", "Files read into a table"},
		{&m.filesFailed, "actcli_files_failed", "Files skipped after a read failure"},
		{&m.rowsRead, "actcli_rows_read", "Valid rows read from instrument files"},
		{&m.rowsSkipped, "actcli_rows_skipped", "Malformed rows skipped while reading"},
		{&m.unparseableNames, "actcli_unparseable_filenames", "Files excluded because their name carries no date"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.stageDuration, err = meter.Float64Histogram(
		"actcli_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.heapAlloc, err = meter.Int64Gauge(
		"actcli_heap_alloc",
		metric.WithDescription("Heap bytes allocated at the end of the run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	m.goroutines, err = meter.Int64Gauge(
		"actcli_goroutines",
		metric.WithDescription("Goroutines alive at the end of the run"),
	)
	if err != nil {
		return nil, err
	}

	m.runtime, err = meter.Float64Gauge(
		"actcli_run_duration",
		metric.WithDescription("Wall time of the run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// FileCounts is the per-run tally reported by the pipeline
type FileCounts struct {
	Selected    int
	Read        int
	Failed      int
	RowsRead    int
	RowsSkipped int
	Unparseable int
}

// RecordFiles adds a run's file and row tallies
func (m *PipelineMetrics) RecordFiles(ctx context.Context, model string, c FileCounts) {
	if m == nil {
		return
	}
	opt := metric.WithAttributes(attribute.String("model", model))
	m.filesSelected.Add(ctx, int64(c.Selected), opt)
	m.filesRead.Add(ctx, int64(c.Read), opt)
	m.filesFailed.Add(ctx, int64(c.Failed), opt)
	m.rowsRead.Add(ctx, int64(c.RowsRead), opt)
	m.rowsSkipped.Add(ctx, int64(c.RowsSkipped), opt)
	m.unparseableNames.Add(ctx, int64(c.Unparseable), opt)
}

// RecordStage records how long one pipeline stage took
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage, model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("model", model),
		attribute.String("status", status),
	))
}

// RecordRuntime snapshots process resource usage at the end of a run
func (m *PipelineMetrics) RecordRuntime(ctx context.Context, started time.Time) {
	if m == nil {
		return
	}
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.heapAlloc.Record(ctx, int64(memStats.HeapAlloc))
	m.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	m.runtime.Record(ctx, time.Since(started).Seconds())
}
