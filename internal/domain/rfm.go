package domain

import "time"

// RFMScore holds the raw and normalized recency, frequency and monetary
// metrics of a location and their blended score.
type RFMScore struct {
	Location  string  `json:"location"`
	Recency   int     `json:"recency_days"`
	Frequency int     `json:"frequency"`
	Monetary  float64 `json:"monetary"`

	RecencyNorm   float64 `json:"recency_norm"`
	FrequencyNorm float64 `json:"frequency_norm"`
	MonetaryNorm  float64 `json:"monetary_norm"`
	Score         float64 `json:"score"`
}

// SkippedLocation records why a location is missing from a view.
type SkippedLocation struct {
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// RFMView is the scored location set plus the locations that could not be
// scored.
type RFMView struct {
	Scores  []RFMScore        `json:"scores"`
	Skipped []SkippedLocation `json:"skipped"`
}

// RFMScores computes, per location:
//   - Recency: whole days between the table's latest timestamp and the
//     location's latest timestamp
//   - Frequency: number of PM2.5 readings
//   - Monetary: mean PM2.5
//
// Each metric is min-max scaled to [0, 1] across the scored locations (all
// zero when min equals max) and the score is their unweighted mean.
func RFMScores(t *Table) RFMView {
	view := RFMView{Scores: make([]RFMScore, 0), Skipped: make([]SkippedLocation, 0)}

	globalLatest, ok := maxTime(t.Rows)
	for _, g := range groupByLocation(t.Rows) {
		latest, hasTime := maxTime(g.Rows)
		mean, n, hasPM := meanPM25(g.Rows)
		switch {
		case !ok || !hasTime:
			view.Skipped = append(view.Skipped, SkippedLocation{Location: g.Location, Reason: "no valid timestamp"})
			continue
		case !hasPM:
			view.Skipped = append(view.Skipped, SkippedLocation{Location: g.Location, Reason: "no PM2.5 readings"})
			continue
		}

		view.Scores = append(view.Scores, RFMScore{
			Location:  g.Location,
			Recency:   wholeDays(globalLatest.Sub(latest)),
			Frequency: n,
			Monetary:  mean,
		})
	}

	recency := minMaxScale(view.Scores, func(s RFMScore) float64 { return float64(s.Recency) })
	frequency := minMaxScale(view.Scores, func(s RFMScore) float64 { return float64(s.Frequency) })
	monetary := minMaxScale(view.Scores, func(s RFMScore) float64 { return s.Monetary })

	for i := range view.Scores {
		s := &view.Scores[i]
		s.RecencyNorm = recency[i]
		s.FrequencyNorm = frequency[i]
		s.MonetaryNorm = monetary[i]
		s.Score = (s.RecencyNorm + s.FrequencyNorm + s.MonetaryNorm) / 3
	}
	return view
}

// minMaxScale rescales one metric to [0, 1]. A constant metric maps to 0.
func minMaxScale(scores []RFMScore, metric func(RFMScore) float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	low, high := metric(scores[0]), metric(scores[0])
	for _, s := range scores[1:] {
		v := metric(s)
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	if high == low {
		return out
	}
	for i, s := range scores {
		out[i] = (metric(s) - low) / (high - low)
	}
	return out
}

// wholeDays floors a non-negative duration to days.
func wholeDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
