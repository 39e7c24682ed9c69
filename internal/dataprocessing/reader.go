package dataprocessing

import (
	"bufio"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "actcli/internal/errors"
	"actcli/internal/infrastructure"
	"actcli/pkg/contracts/domain"
)

// MaxRowErrors caps the row errors retained per file. SkippedRows stays exact.
const MaxRowErrors = 100

// RowError describes one skipped row
type RowError struct {
	Line   int
	Reason string
}

// ReadResult is the outcome of reading one instrument file
type ReadResult struct {
	Table       *domain.Table
	SkippedRows int
	RowErrors   []RowError
}

func (r *ReadResult) skip(line int, reason string) {
	r.SkippedRows++
	if len(r.RowErrors) < MaxRowErrors {
		r.RowErrors = append(r.RowErrors, RowError{Line: line, Reason: reason})
	}
}

// ReaderOptions configures the workbook layout
type ReaderOptions struct {
	Sheet    string
	SkipRows int
}

// Reader turns instrument files into tables
type Reader struct {
	opts   ReaderOptions
	logger *slog.Logger
}

// NewReader creates a reader. An empty sheet name means Sheet1.
func NewReader(logger *slog.Logger, opts ReaderOptions) *Reader {
	if opts.Sheet == "" {
		opts.Sheet = "Sheet1"
	}
	if opts.SkipRows < 0 {
		opts.SkipRows = 0
	}
	return &Reader{
		opts:   opts,
		logger: infrastructure.WithComponent(logger, "reader"),
	}
}

// ReadFile reads path in the given format. Malformed rows are skipped and
// counted; a file that cannot be opened, has no header or yields no valid
// rows is a read failure.
func (r *Reader) ReadFile(ctx context.Context, path string, format domain.FileFormat) (*ReadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spec, err := SpecFor(format)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot read file", err).WithContext("file", path)
	}

	var result *ReadResult
	if format == domain.FormatXLSX {
		result, err = r.readWorkbook(path)
	} else {
		result, err = r.readText(path, spec)
	}
	if err != nil {
		return nil, err
	}

	if result.Table.Len() == 0 {
		return nil, apperrors.NewReadFailure(path, fmt.Errorf("no valid rows (%d skipped)", result.SkippedRows))
	}

	if result.SkippedRows > 0 {
		r.logger.Warn("Skipped malformed rows",
			slog.String("file", filepath.Base(path)),
			slog.Int("skipped", result.SkippedRows),
			slog.String("error_type", string(apperrors.ErrTypeMalformedRow)))
		for _, re := range result.RowErrors {
			r.logger.Debug("Malformed row",
				slog.String("file", filepath.Base(path)),
				slog.Int("line", re.Line),
				slog.String("reason", re.Reason))
		}
	}

	r.logger.Debug("File read",
		slog.String("file", filepath.Base(path)),
		slog.String("format", format.String()),
		slog.Int("rows", result.Table.Len()),
		slog.Int("columns", len(result.Table.Columns)))

	return result, nil
}

// rawRecord is one physical record with its 1-based line number
type rawRecord struct {
	line   int
	fields []string
	err    error
}

func (r *Reader) readText(path string, spec FormatSpec) (*ReadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewReadFailure(path, err)
	}
	defer f.Close()

	var records []rawRecord
	if spec.Delimiter == 0 {
		records, err = whitespaceRecords(f)
	} else {
		records, err = delimitedRecords(f, spec.Delimiter)
	}
	if err != nil {
		return nil, apperrors.NewReadFailure(path, err)
	}

	headerAt := -1
	for i, rec := range records {
		if rec.line-1 >= spec.HeaderLine && rec.err == nil && len(rec.fields) > 0 {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, apperrors.NewReadFailure(path, stderrors.New("no header row"))
	}

	layout, err := newColumnLayout(spec, records[headerAt].fields)
	if err != nil {
		return nil, apperrors.NewReadFailure(path, err)
	}

	result := &ReadResult{Table: domain.NewTable(layout.names)}
	for _, rec := range records[headerAt+1:] {
		if rec.err != nil {
			result.skip(rec.line, rec.err.Error())
			continue
		}
		ts, values, err := layout.parseRow(rec.fields, false)
		if err != nil {
			result.skip(rec.line, err.Error())
			continue
		}
		_ = result.Table.AppendRow(ts, values)
	}
	return result, nil
}

func whitespaceRecords(rd io.Reader) ([]rawRecord, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var records []rawRecord
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		records = append(records, rawRecord{line: line, fields: fields})
	}
	return records, scanner.Err()
}

func delimitedRecords(rd io.Reader, delim rune) ([]rawRecord, error) {
	cr := csv.NewReader(rd)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records []rawRecord
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		var perr *csv.ParseError
		if stderrors.As(err, &perr) {
			records = append(records, rawRecord{line: perr.Line, err: perr.Err})
			continue
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rawRecord{line: line, fields: fields})
	}
}

func (r *Reader) readWorkbook(path string) (*ReadResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewReadFailure(path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.opts.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewReadFailure(path, fmt.Errorf("sheet %q: %w", r.opts.Sheet, err))
	}
	if len(rows) <= r.opts.SkipRows || len(rows[r.opts.SkipRows]) == 0 {
		return nil, apperrors.NewReadFailure(path, stderrors.New("no header row"))
	}

	layout, err := newColumnLayout(FormatSpec{Format: domain.FormatXLSX}, rows[r.opts.SkipRows])
	if err != nil {
		return nil, apperrors.NewReadFailure(path, err)
	}
	layout.excelDates = true

	result := &ReadResult{Table: domain.NewTable(layout.names)}
	for i, row := range rows[r.opts.SkipRows+1:] {
		line := r.opts.SkipRows + i + 2
		if len(row) == 0 {
			continue
		}
		ts, values, err := layout.parseRow(row, true)
		if err != nil {
			result.skip(line, err.Error())
			continue
		}
		_ = result.Table.AppendRow(ts, values)
	}
	return result, nil
}

// columnLayout maps header positions to timestamp parts and channels
type columnLayout struct {
	width      int
	timestamp  []int
	channels   []int
	names      []string
	excelDates bool
}

func newColumnLayout(spec FormatSpec, header []string) (*columnLayout, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = spec.normalizeName(h)
	}

	layout := &columnLayout{width: len(names)}
	if len(spec.TimestampColumns) == 0 {
		layout.timestamp = []int{0}
	} else {
		for _, want := range spec.TimestampColumns {
			pos := -1
			for i, n := range names {
				if strings.EqualFold(n, want) {
					pos = i
					break
				}
			}
			if pos < 0 {
				return nil, fmt.Errorf("timestamp column %q not found in header", want)
			}
			layout.timestamp = append(layout.timestamp, pos)
		}
	}

	isTimestamp := make(map[int]bool, len(layout.timestamp))
	for _, p := range layout.timestamp {
		isTimestamp[p] = true
	}
	for i, n := range names {
		if isTimestamp[i] || n == "" || spec.isDropped(n) {
			continue
		}
		layout.channels = append(layout.channels, i)
		layout.names = append(layout.names, n)
	}
	return layout, nil
}

// parseRow converts one record. Short rows are padded with empty cells
// only when padShort is set, as workbook rows omit trailing blanks.
func (l *columnLayout) parseRow(fields []string, padShort bool) (time.Time, []float64, error) {
	if len(fields) > l.width || (len(fields) < l.width && !padShort) {
		return time.Time{}, nil, fmt.Errorf("expected %d fields, got %d", l.width, len(fields))
	}
	cell := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	ts, err := l.parseTimestamp(cell)
	if err != nil {
		return time.Time{}, nil, err
	}

	values := make([]float64, len(l.channels))
	for k, pos := range l.channels {
		raw := cell(pos)
		if raw == "" {
			values[k] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("column %s: invalid number %q", l.names[k], raw)
		}
		values[k] = v
	}
	return ts, values, nil
}

func (l *columnLayout) parseTimestamp(cell func(int) string) (time.Time, error) {
	parts := make([]string, 0, len(l.timestamp))
	for _, pos := range l.timestamp {
		parts = append(parts, cell(pos))
	}
	raw := strings.Join(parts, " ")

	if l.excelDates {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid excel date %q: %w", raw, err)
			}
			return t.Round(time.Millisecond).UTC(), nil
		}
	}
	return ParseTimestamp(raw)
}
