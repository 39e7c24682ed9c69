package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"actcli/internal/files"
	"actcli/internal/infrastructure"
	"actcli/pkg/contracts/domain"
)

// IndexHeader names the timestamp column of exported tables
const IndexHeader = "Date"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	manager *files.Manager
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(manager *files.Manager, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		manager: manager,
		logger:  infrastructure.WithComponent(logger, "exporter"),
	}
}

// WriteTable writes a table with its timestamp in the first column
func (w *CSVWriter) WriteTable(filePath string, t *domain.Table, bom bool) error {
	w.logger.Info("Writing table",
		slog.String("file_path", filePath),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)))

	return w.manager.WriteAtomic(filePath, func(out io.Writer) error {
		return EncodeTable(out, t, bom)
	})
}

// EncodeTable streams t as CSV. Missing values are empty cells.
func EncodeTable(out io.Writer, t *domain.Table, bom bool) error {
	headers := append([]string{IndexHeader}, t.Columns...)
	stream, err := NewStreamWriter(out, headers, bom)
	if err != nil {
		return err
	}

	record := make([]string, len(headers))
	for i, ts := range t.Index {
		record[0] = formatTime(ts)
		for j, v := range t.Values[i] {
			record[j+1] = formatFloat(v)
		}
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return stream.Flush()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and headers and returns a writer
// for the remaining records
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush writes any buffered records and reports the first write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
