package domain

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// Column names the normalizer looks for in the raw table.
const (
	ColumnLocation = "location"
	ColumnPM25     = "PM2.5"
	ColumnDate     = "date"
	ColumnYear     = "year"
	ColumnMonth    = "month"
	ColumnDay      = "day"
	ColumnHour     = "hour"

	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
)

// RawTable is an arbitrary tabular dataset as read from the source, every
// cell still a string.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// Measurement is one normalized observation.
type Measurement struct {
	Location string
	// Time is the zero value when the row's timestamp could not be derived.
	Time time.Time
	// PM25 is NaN when the reading is missing.
	PM25 float64
	// Fields holds every other numeric column, NaN for missing cells.
	Fields map[string]float64
	// Labels holds non-numeric columns (e.g. wind direction).
	Labels map[string]string
	// Coordinates is nil until enrichment, and stays nil for locations
	// without a reference entry. X is longitude, Y is latitude.
	Coordinates *orb.Point
}

// HasTime reports whether the row carries a valid timestamp.
func (m Measurement) HasTime() bool { return !m.Time.IsZero() }

// HasPM25 reports whether the row carries a PM2.5 reading.
func (m Measurement) HasPM25() bool { return !math.IsNaN(m.PM25) }

// Value returns a numeric column by name, including PM2.5.
func (m Measurement) Value(column string) float64 {
	if column == ColumnPM25 {
		return m.PM25
	}
	if v, ok := m.Fields[column]; ok {
		return v
	}
	return math.NaN()
}

// Table is the measurement corpus for one run. It is never mutated after
// Enrich returns it; derived views build new values.
type Table struct {
	Columns        []string
	NumericColumns []string
	Rows           []Measurement
	// Issues lists per-row problems that were recovered locally. Each entry
	// wraps ErrUnparsableTimestamp or ErrUnmatchedLocation.
	Issues []error
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// clone returns a shallow copy with its own row and issue slices.
func (t *Table) clone() *Table {
	return &Table{
		Columns:        append([]string(nil), t.Columns...),
		NumericColumns: append([]string(nil), t.NumericColumns...),
		Rows:           append([]Measurement(nil), t.Rows...),
		Issues:         append([]error(nil), t.Issues...),
	}
}
