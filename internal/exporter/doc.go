// Package exporter persists frames as CSV files and summary tables as one
// XLSX workbook.
//
// Every writer goes through a temporary file in the destination directory
// that is renamed into place once complete, so a failed run never leaves a
// partially written output behind.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteFrame(paths.CanonicalPath(), canonical)
//
//	err = exporter.WriteWorkbook(paths.ReportPath("summary.xlsx"), []exporter.Sheet{
//		{Name: "Network", Frame: network},
//	}, logger)
package exporter
