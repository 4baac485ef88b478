package domain

import (
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// locationGroup is the set of rows for one location, in table order.
type locationGroup struct {
	Location string
	Rows     []Measurement
}

// locations returns the distinct locations of rows in first-seen order.
func locations(rows []Measurement) []string {
	return lo.Uniq(lo.Map(rows, func(m Measurement, _ int) string { return m.Location }))
}

// groupByLocation splits rows per location. Groups come out in first-seen
// order so that later stable sorts keep table order among ties.
func groupByLocation(rows []Measurement) []locationGroup {
	grouped := lo.GroupBy(rows, func(m Measurement) string { return m.Location })
	return lo.Map(locations(rows), func(loc string, _ int) locationGroup {
		return locationGroup{Location: loc, Rows: grouped[loc]}
	})
}

// rowsFor returns the rows for one location.
func rowsFor(t *Table, location string) []Measurement {
	return lo.Filter(t.Rows, func(m Measurement, _ int) bool { return m.Location == location })
}

// timedRows drops rows without a valid timestamp.
func timedRows(rows []Measurement) []Measurement {
	return lo.Filter(rows, func(m Measurement, _ int) bool { return m.HasTime() })
}

// pm25Values collects the present PM2.5 readings.
func pm25Values(rows []Measurement) []float64 {
	out := make([]float64, 0, len(rows))
	for _, m := range rows {
		if m.HasPM25() {
			out = append(out, m.PM25)
		}
	}
	return out
}

// meanPM25 averages the present readings. ok is false when there are none.
func meanPM25(rows []Measurement) (mean float64, n int, ok bool) {
	values := pm25Values(rows)
	if len(values) == 0 {
		return 0, 0, false
	}
	return stat.Mean(values, nil), len(values), true
}

// maxTime returns the latest valid timestamp among rows.
func maxTime(rows []Measurement) (time.Time, bool) {
	var latest time.Time
	for _, m := range rows {
		if m.HasTime() && m.Time.After(latest) {
			latest = m.Time
		}
	}
	return latest, !latest.IsZero()
}
