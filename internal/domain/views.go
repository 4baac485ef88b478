package domain

import (
	"errors"
	"time"
)

// DefaultRecentWindowMonths and DefaultTopN are the stock view parameters.
const (
	DefaultRecentWindowMonths = 6
	DefaultTopN               = 5
)

// maxIssueMessages caps the per-row messages carried in an IssueSummary.
const maxIssueMessages = 50

// Options parameterizes the derived views of one run. TopN limits the
// highest-averages ranking; PoorQualityTopN limits the poor-quality counts
// and is 0 (every location) unless set.
type Options struct {
	Threshold       float64 `json:"threshold"`
	WindowMonths    int     `json:"window_months"`
	TopN            int     `json:"top_n"`
	PoorQualityTopN int     `json:"poor_quality_top_n"`
	HistogramBins   int     `json:"histogram_bins"`
}

// DefaultOptions returns threshold 150, a six-month window, top 5 averages,
// unlimited poor-quality counts and 30 histogram bins.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		WindowMonths:  DefaultRecentWindowMonths,
		TopN:          DefaultTopN,
		HistogramBins: DefaultHistogramBins,
	}
}

// IssueSummary condenses the recovered per-row problems of a table.
type IssueSummary struct {
	UnparsableTimestamps int      `json:"unparsable_timestamps"`
	UnmatchedLocations   int      `json:"unmatched_locations"`
	Messages             []string `json:"messages,omitempty"`
}

// SummarizeIssues counts the issues recorded on t by kind.
func SummarizeIssues(t *Table) IssueSummary {
	var s IssueSummary
	for _, err := range t.Issues {
		switch {
		case errors.Is(err, ErrUnparsableTimestamp):
			s.UnparsableTimestamps++
		case errors.Is(err, ErrUnmatchedLocation):
			s.UnmatchedLocations++
		}
		if len(s.Messages) < maxIssueMessages {
			s.Messages = append(s.Messages, err.Error())
		}
	}
	return s
}

// Views is every derived view of one pipeline run, as handed to the
// rendering shell.
type Views struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Rows        int          `json:"rows"`
	Columns     []string     `json:"columns"`
	Issues      IssueSummary `json:"issues"`
	Options     Options      `json:"options"`

	Trends          []LocationTrends `json:"trends"`
	PoorQuality     []LocationCount  `json:"poor_quality"`
	HighestAverages []LocationMean   `json:"highest_averages"`
	RFM             RFMView          `json:"rfm"`
	Geo             GeoView          `json:"geo"`
	Profile         Profile          `json:"profile"`
}

// View names used by the HTTP and Kafka adapters.
const (
	ViewTrends          = "trends"
	ViewPoorQuality     = "poor-quality"
	ViewHighestAverages = "highest-averages"
	ViewRFM             = "rfm"
	ViewGeo             = "geo"
	ViewProfile         = "profile"
)

// ViewNames lists the named views in publication order.
func ViewNames() []string {
	return []string{ViewTrends, ViewPoorQuality, ViewHighestAverages, ViewRFM, ViewGeo, ViewProfile}
}

// Named returns a single view by name.
func (v *Views) Named(name string) (any, bool) {
	switch name {
	case ViewTrends:
		return v.Trends, true
	case ViewPoorQuality:
		return v.PoorQuality, true
	case ViewHighestAverages:
		return v.HighestAverages, true
	case ViewRFM:
		return v.RFM, true
	case ViewGeo:
		return v.Geo, true
	case ViewProfile:
		return v.Profile, true
	default:
		return nil, false
	}
}

// TrendsOf returns the temporal series of one location.
func (v *Views) TrendsOf(location string) (LocationTrends, bool) {
	for _, tr := range v.Trends {
		if tr.Location == location {
			return tr, true
		}
	}
	return LocationTrends{}, false
}
