package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "amtkcli/internal/errors"
	"amtkcli/internal/frame"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV loads a stage file and types its columns with schema. Empty cells
// are missing. A leading byte order mark is ignored.
func ReadCSV(path string, schema Schema) (*frame.Frame, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("file %s", path))
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	// Declared columns load as text so Resolve sees the raw cell and can
	// count sentinels or report the offending value.
	df := dataframe.ReadCSV(bytes.NewReader(content),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(schema.loadTypes()),
		dataframe.NaNValues([]string{""}),
	)

	var out *frame.Frame
	if df.Err != nil {
		header, ok, herr := headerOnly(content)
		if herr != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse CSV %s", path), herr)
		}
		if !ok {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to parse CSV %s", path), df.Err)
		}
		out = frame.Empty(header...)
	} else if out, err = frame.FromDataFrame(df); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	typed, _, err := Resolve(out, schema, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return typed, nil
}

// headerOnly reports whether content holds a header and no data rows,
// returning the header. Empty content is a parse error.
func headerOnly(content []byte) ([]string, bool, error) {
	r := csv.NewReader(bytes.NewReader(content))
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, errors.New("no header")
	}
	if err != nil {
		return nil, false, err
	}
	if _, err := r.Read(); errors.Is(err, io.EOF) {
		return header, true, nil
	}
	return nil, false, nil
}
