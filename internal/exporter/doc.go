// Package exporter writes analysis results as CSV files.
//
// CSVWriter: core CSV writing with streaming, an optional UTF-8 BOM for
// Excel, and atomic replacement of the target file through files.Manager.
//
// Tables are written with a leading Date column and one column per channel.
// Diurnal profiles are written in long form, one record per time of day and
// channel, through gocsv struct tags on DiurnalRecord.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(files.NewManager(paths, logger), logger)
//	err := writer.WriteTable("reports/nox_merged.csv", table, false)
//	err = writer.WriteDiurnal("reports/nox_diurnal.csv", profile)
package exporter
