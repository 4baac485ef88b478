// Package csvfile loads the raw measurement table from a CSV file.
package csvfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source reads a CSV file on every LoadTable call.
// It implements pipeline.TableSource.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the file at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// LoadTable reads the whole file into a raw table.
func (s *Source) LoadTable(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	raw, err := ReadTable(f)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.logger.Debug("csv loaded", "path", s.path, "rows", len(raw.Rows), "columns", len(raw.Columns))
	return raw, nil
}

// ReadTable parses CSV with a header row. Every column is kept as text so
// that type inference stays with the normalizer; NA cells come back as "NaN".
// An empty input yields an empty table rather than an error.
func ReadTable(r io.Reader) (domain.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.RawTable{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.RawTable{}, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return domain.RawTable{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	records := df.Records()
	if len(records) == 0 {
		return domain.RawTable{}, nil
	}
	return domain.RawTable{
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}
