package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Series is a set of timestamped rows used to build instrument files
type Series struct {
	Columns []string
	Stamps  []time.Time
	Values  [][]float64
}

// MinuteSeries builds n rows one minute apart starting at start.
// Row i of column j holds fn(i, j).
func MinuteSeries(start time.Time, n int, columns []string, fn func(i, j int) float64) Series {
	s := Series{Columns: columns}
	for i := 0; i < n; i++ {
		s.Stamps = append(s.Stamps, start.Add(time.Duration(i)*time.Minute))
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = fn(i, j)
		}
		s.Values = append(s.Values, row)
	}
	return s
}

// WriteFile writes raw content to dir/name and returns the path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// Touch creates empty files in dir
func Touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		WriteFile(t, dir, name, "")
	}
}

// DatContent renders s in the Thermo iPort .dat layout: a nine line
// preamble, a whitespace separated header starting "Time Date Flags",
// then one line per row. extra lines are appended verbatim.
func DatContent(model string, s Series, extra ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Data\n", strings.ToUpper(model))
	b.WriteString("\n")
	b.WriteString("Thermo Scientific iPort export\n")
	b.WriteString("\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "preamble line %d\n", i+1)
	}
	b.WriteString("Time Date  Flags " + strings.Join(s.Columns, " ") + "\n")
	for i, ts := range s.Stamps {
		fields := []string{ts.Format("15:04"), ts.Format("01-02-06"), "0C100400"}
		for _, v := range s.Values[i] {
			fields = append(fields, formatValue(v, "nan"))
		}
		b.WriteString(strings.Join(fields, "  ") + "\n")
	}
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// WriteDatFile writes a .dat fixture and returns its path
func WriteDatFile(t *testing.T, dir, name, model string, s Series, extra ...string) string {
	t.Helper()
	return WriteFile(t, dir, name, DatContent(model, s, extra...))
}

// WriteCSVFile writes a comma separated fixture with the timestamp in column 0
func WriteCSVFile(t *testing.T, dir, name string, s Series, extra ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date," + strings.Join(s.Columns, ",") + "\n")
	for i, ts := range s.Stamps {
		fields := []string{ts.Format("2006-01-02 15:04:05")}
		for _, v := range s.Values[i] {
			fields = append(fields, formatValue(v, ""))
		}
		b.WriteString(strings.Join(fields, ",") + "\n")
	}
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	return WriteFile(t, dir, name, b.String())
}

// WriteVAPSFile writes a tab separated VAPS logger fixture.
// The Date/Time column is placed second, after a record counter.
func WriteVAPSFile(t *testing.T, dir, name string, s Series, extra ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Record\tDate/Time\t" + strings.Join(s.Columns, "\t") + "\n")
	for i, ts := range s.Stamps {
		fields := []string{strconv.Itoa(i + 1), ts.Format("1/2/2006 15:04:05")}
		for _, v := range s.Values[i] {
			fields = append(fields, formatValue(v, ""))
		}
		b.WriteString(strings.Join(fields, "\t") + "\n")
	}
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	return WriteFile(t, dir, name, b.String())
}

// WriteXLSXFile writes a workbook with skipRows title rows above the header.
// Timestamps are stored as Excel date cells in column A.
func WriteXLSXFile(t *testing.T, dir, name, sheet string, skipRows int, s Series) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}

	row := 1
	for i := 0; i < skipRows; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{fmt.Sprintf("title %d", i+1)}); err != nil {
			t.Fatalf("write title row: %v", err)
		}
		row++
	}

	header := []interface{}{"Date"}
	for _, c := range s.Columns {
		header = append(header, c)
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	row++

	for i, ts := range s.Stamps {
		values := []interface{}{ts}
		for _, v := range s.Values[i] {
			if math.IsNaN(v) {
				values = append(values, nil)
				continue
			}
			values = append(values, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
		row++
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func formatValue(v float64, missing string) string {
	if math.IsNaN(v) {
		return missing
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
