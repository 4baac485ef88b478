package domain

import (
	"math"
	"time"
)

const (
	testDongsi  = "Dongsi"
	testTiantan = "Tiantan"
	testShunyi  = "Shunyi"
	testUnknown = "Atlantis"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func reading(location string, ts time.Time, pm25 float64) Measurement {
	return Measurement{
		Location: location,
		Time:     ts,
		PM25:     pm25,
		Fields:   map[string]float64{},
		Labels:   map[string]string{},
	}
}

func missingPM(location string, ts time.Time) Measurement {
	return reading(location, ts, math.NaN())
}

// enrichedTable builds an enriched table directly from measurements.
func enrichedTable(rows ...Measurement) *Table {
	return Enrich(&Table{
		Columns:        []string{ColumnLocation, ColumnPM25, ColumnDate},
		NumericColumns: []string{ColumnPM25},
		Rows:           rows,
	})
}
