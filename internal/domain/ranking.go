package domain

import "sort"

// DefaultThreshold is the PM2.5 level above which a reading counts as poor
// air quality.
const DefaultThreshold = 150.0

// LocationCount is the number of poor-quality readings at a location.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// LocationMean is the average PM2.5 at a location.
type LocationMean struct {
	Location string  `json:"location"`
	MeanPM25 float64 `json:"mean_pm25"`
}

// PoorQualityCounts counts, per location, the readings strictly above
// threshold. Locations without such readings are omitted. The result is
// sorted by count, highest first, and truncated to topN when topN > 0.
func PoorQualityCounts(t *Table, threshold float64, topN int) []LocationCount {
	out := make([]LocationCount, 0)
	for _, g := range groupByLocation(t.Rows) {
		n := 0
		for _, m := range g.Rows {
			if m.HasPM25() && m.PM25 > threshold {
				n++
			}
		}
		if n > 0 {
			out = append(out, LocationCount{Location: g.Location, Count: n})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return truncate(out, topN)
}

// HighestAverages ranks locations by mean PM2.5, highest first. Ties keep
// table order. Locations without readings are absent.
func HighestAverages(t *Table, n int) []LocationMean {
	out := make([]LocationMean, 0)
	for _, g := range groupByLocation(t.Rows) {
		mean, _, ok := meanPM25(g.Rows)
		if !ok {
			continue
		}
		out = append(out, LocationMean{Location: g.Location, MeanPM25: mean})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].MeanPM25 > out[j].MeanPM25 })
	return truncate(out, n)
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
