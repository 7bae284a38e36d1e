package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. The file
// appears at filePath only once fully written.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	return writeAtomic(filePath, func(file *os.File) error {
		if options.BOMPrefix {
			if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}

		writer := csv.NewWriter(file)
		if len(options.Headers) > 0 {
			if err := writer.Write(options.Headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		for i, record := range options.Records {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// WriteFrame writes f with its column names as the header row.
func (w *CSVWriter) WriteFrame(filePath string, f *frame.Frame) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers: f.Columns(),
		Records: Records(f),
	})
}

// Records renders every row of f as CSV fields.
func Records(f *frame.Frame) [][]string {
	cols := f.Series()
	records := make([][]string, f.Len())
	for i := range records {
		record := make([]string, len(cols))
		for j, c := range cols {
			record[j] = formatValue(c.Values[i])
		}
		records[i] = record
	}
	return records
}

// writeAtomic runs write against a temporary file next to path and renames
// it over path on success. On failure the temporary file is removed.
func writeAtomic(path string, write func(*os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create temporary file for %s", path), err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err = tmp.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to close %s", path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to move %s into place", path), err)
	}
	return nil
}
