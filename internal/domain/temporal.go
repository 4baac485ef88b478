package domain

import (
	"sort"
	"time"
)

// Season labels produced by SeasonIndex.
type Season string

const (
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
)

var seasonNames = map[int]Season{
	1: SeasonWinter,
	2: SeasonSpring,
	3: SeasonSummer,
	4: SeasonFall,
}

// TrendPoint is the mean PM2.5 of one calendar month.
type TrendPoint struct {
	Period   string    `json:"period"` // YYYY-MM
	Start    time.Time `json:"start"`
	MeanPM25 float64   `json:"mean_pm25"`
	Readings int       `json:"readings"`
}

// SeasonPoint is the mean PM2.5 of one season across all years.
type SeasonPoint struct {
	Season   Season  `json:"season"`
	Index    int     `json:"index"`
	MeanPM25 float64 `json:"mean_pm25"`
	Readings int     `json:"readings"`
}

// LocationTrends bundles the three temporal series of one location.
type LocationTrends struct {
	Location string        `json:"location"`
	Recent   []TrendPoint  `json:"recent"`
	Monthly  []TrendPoint  `json:"monthly"`
	Seasonal []SeasonPoint `json:"seasonal"`
}

// SeasonIndex maps a month to 1..4 with (month % 12) / 3 + 1, so December
// through February is 1 (Winter) and September through November is 4 (Fall).
func SeasonIndex(month time.Month) int {
	return (int(month)%12)/3 + 1
}

// SeasonName returns the label for a season index.
func SeasonName(index int) Season {
	return seasonNames[index]
}

// RecentWindowTrend returns monthly means for the rows of location that fall
// within windowMonths of that location's latest timestamp, oldest first.
func RecentWindowTrend(t *Table, location string, windowMonths int) []TrendPoint {
	rows := timedRows(rowsFor(t, location))
	now, ok := maxTime(rows)
	if !ok {
		return []TrendPoint{}
	}

	cutoff := monthsBefore(now, windowMonths)
	window := make([]Measurement, 0, len(rows))
	for _, m := range rows {
		if !m.Time.Before(cutoff) {
			window = append(window, m)
		}
	}
	return monthlyMeans(window)
}

// monthsBefore steps back n calendar months, clamping the day to the end of
// the target month (Aug 31 minus 6 months is Feb 29 or Feb 28).
func monthsBefore(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return first.AddDate(0, 0, min(t.Day(), lastDay)-1)
}

// MonthlyTrend returns monthly means over every timestamped row of location,
// oldest first.
func MonthlyTrend(t *Table, location string) []TrendPoint {
	return monthlyMeans(timedRows(rowsFor(t, location)))
}

// SeasonalTrend returns one mean per season in the order seasons are first
// met in the table, which is not necessarily calendar order.
func SeasonalTrend(t *Table, location string) []SeasonPoint {
	rows := timedRows(rowsFor(t, location))

	grouped := make(map[int][]Measurement)
	var order []int
	for _, m := range rows {
		idx := SeasonIndex(m.Time.Month())
		if _, seen := grouped[idx]; !seen {
			order = append(order, idx)
		}
		grouped[idx] = append(grouped[idx], m)
	}

	out := make([]SeasonPoint, 0, len(order))
	for _, idx := range order {
		mean, n, ok := meanPM25(grouped[idx])
		if !ok {
			continue
		}
		out = append(out, SeasonPoint{
			Season:   SeasonName(idx),
			Index:    idx,
			MeanPM25: mean,
			Readings: n,
		})
	}
	return out
}

// TrendsFor computes every temporal series for each location in first-seen
// order.
func TrendsFor(t *Table, windowMonths int) []LocationTrends {
	locs := locations(t.Rows)
	out := make([]LocationTrends, 0, len(locs))
	for _, loc := range locs {
		out = append(out, LocationTrends{
			Location: loc,
			Recent:   RecentWindowTrend(t, loc, windowMonths),
			Monthly:  MonthlyTrend(t, loc),
			Seasonal: SeasonalTrend(t, loc),
		})
	}
	return out
}

// monthlyMeans buckets rows by calendar month and returns the buckets in
// chronological order. Months without any PM2.5 reading are left out.
func monthlyMeans(rows []Measurement) []TrendPoint {
	grouped := make(map[time.Time][]Measurement)
	for _, m := range rows {
		key := monthStart(m.Time)
		grouped[key] = append(grouped[key], m)
	}

	keys := make([]time.Time, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		mean, n, ok := meanPM25(grouped[k])
		if !ok {
			continue
		}
		out = append(out, TrendPoint{
			Period:   k.Format("2006-01"),
			Start:    k,
			MeanPM25: mean,
			Readings: n,
		})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
