package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when the source carries a date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// missingValues are cell contents treated as absent, compared case-insensitively.
var missingValues = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Normalize validates a raw table and returns a new Table with a canonical
// timestamp on every row that has one. Unparsable timestamps do not fail the
// call: the row keeps a zero Time and an ErrUnparsableTimestamp issue.
func Normalize(raw RawTable) (*Table, error) {
	if len(raw.Rows) == 0 {
		return nil, ErrEmptyInput
	}

	columns := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		columns[i] = strings.TrimSpace(c)
	}
	index := columnIndex(columns)
	for _, col := range []string{ColumnLocation, ColumnPM25} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	_, hasDate := index[ColumnDate]
	if !hasDate {
		var missing []string
		for _, col := range []string{ColumnYear, ColumnMonth, ColumnDay, ColumnHour} {
			if _, ok := index[col]; !ok {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingTemporalFields, strings.Join(missing, ", "))
		}
	}

	numeric := numericColumns(columns, raw.Rows)
	table := &Table{
		Columns: columns,
		Rows:    make([]Measurement, 0, len(raw.Rows)),
	}
	if !hasDate {
		table.Columns = append(table.Columns, ColumnDate)
	}
	for j, col := range columns {
		if numeric[col] && index[col] == j {
			table.NumericColumns = append(table.NumericColumns, col)
		}
	}

	for i, row := range raw.Rows {
		cell := func(col string) string {
			j, ok := index[col]
			if !ok || j >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[j])
		}

		m := Measurement{
			Location: cell(ColumnLocation),
			PM25:     parseFloatOrNaN(cell(ColumnPM25)),
			Fields:   make(map[string]float64),
			Labels:   make(map[string]string),
		}

		for col, j := range index {
			if col == ColumnLocation || col == ColumnPM25 || col == ColumnDate {
				continue
			}
			v := ""
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			if numeric[col] {
				m.Fields[col] = parseFloatOrNaN(v)
			} else {
				m.Labels[col] = v
			}
		}

		var ok bool
		if hasDate {
			m.Time, ok = parseTimestamp(cell(ColumnDate))
			if !ok {
				table.Issues = append(table.Issues,
					fmt.Errorf("row %d: %w: %q", i, ErrUnparsableTimestamp, cell(ColumnDate)))
			}
		} else {
			m.Time, ok = timestampFromParts(cell(ColumnYear), cell(ColumnMonth), cell(ColumnDay), cell(ColumnHour))
			if !ok {
				table.Issues = append(table.Issues,
					fmt.Errorf("row %d: %w: year=%q month=%q day=%q hour=%q", i, ErrUnparsableTimestamp,
						cell(ColumnYear), cell(ColumnMonth), cell(ColumnDay), cell(ColumnHour)))
			}
		}

		table.Rows = append(table.Rows, m)
	}

	return table, nil
}

// columnIndex maps column names to their position. The first occurrence of a
// duplicated name wins.
func columnIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}
	return index
}

// numericColumns reports, per column, whether every present cell parses as a
// float. PM2.5 is always numeric; location and date never are.
func numericColumns(columns []string, rows [][]string) map[string]bool {
	numeric := make(map[string]bool, len(columns))
	for j, c := range columns {
		switch c {
		case ColumnPM25:
			numeric[c] = true
			continue
		case ColumnLocation, ColumnDate:
			continue
		}
		if _, seen := numeric[c]; seen {
			continue
		}
		isNumeric := true
		for _, row := range rows {
			if j >= len(row) || isMissing(row[j]) {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[j]), 64); err != nil {
				isNumeric = false
				break
			}
		}
		numeric[c] = isNumeric
	}
	return numeric
}

func isMissing(s string) bool {
	return missingValues[strings.ToLower(strings.TrimSpace(s))]
}

// parseFloatOrNaN parses a cell as float64, returning NaN for missing or
// unparsable values.
func parseFloatOrNaN(s string) float64 {
	if isMissing(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// parseTimestamp tries each supported layout and returns the time in UTC.
func parseTimestamp(s string) (time.Time, bool) {
	if isMissing(s) {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// The zero instant marks a row without a timestamp.
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

// timestampFromParts builds an hourly UTC timestamp from integer calendar
// components. Out-of-range components (month 13, February 30, hour 24) are
// rejected instead of being rolled over.
func timestampFromParts(year, month, day, hour string) (time.Time, bool) {
	y, okY := parseIntComponent(year)
	mo, okM := parseIntComponent(month)
	d, okD := parseIntComponent(day)
	h, okH := parseIntComponent(hour)
	if !okY || !okM || !okD || !okH {
		return time.Time{}, false
	}
	if mo < 1 || mo > 12 || d < 1 || h < 0 || h > 23 || y < 1 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(mo), d, h, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// parseIntComponent accepts integral values, including float spellings such
// as "2013.0".
func parseIntComponent(s string) (int, bool) {
	v := parseFloatOrNaN(s)
	if math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}
