// Package shared holds helpers used across actcli packages that belong to no
// single layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and fixture writers for every supported instrument file layout
// (.dat, .csv, VAPS .txt and .xlsx workbooks built with excelize).
package shared
