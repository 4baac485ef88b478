package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"
)

// Band is a PM2.5 severity category.
type Band string

const (
	BandLow        Band = "Low"
	BandModerate   Band = "Moderate"
	BandHigh       Band = "High"
	BandVeryHigh   Band = "Very High"
	BandOutOfRange Band = "Error:OutOfRange"
)

// Band breakpoints and marker encoding parameters.
const (
	bandModerateFrom = 50.0
	bandHighFrom     = 100.0
	bandVeryHighFrom = 150.0
	bandUpperLimit   = 300.0

	maxMarkerRadius = 20.0

	MarkerRed   = "red"
	MarkerGreen = "green"
)

// GeoCluster is the map entry of one location.
type GeoCluster struct {
	Location     string  `json:"location"`
	AvgPM25      float64 `json:"avg_pm25"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Band         Band    `json:"band"`
	MarkerRadius float64 `json:"marker_radius"`
	MarkerColor  string  `json:"marker_color"`
	Error        string  `json:"error,omitempty"`

	// Err wraps ErrOutOfRangeBand when Band is BandOutOfRange.
	Err error `json:"-"`
}

// GeoView is the geospatial cluster set with the map framing.
type GeoView struct {
	Clusters []GeoCluster      `json:"clusters"`
	Center   orb.Point         `json:"center"` // mean cluster position, (lon, lat)
	Bounds   orb.Bound         `json:"bounds"`
	Skipped  []SkippedLocation `json:"skipped"`
}

// ClassifyBand assigns a severity band using right-open bins
// [0,50) [50,100) [100,150) and the closed top bin [150,300]. Anything
// outside [0,300], NaN included, returns BandOutOfRange and an error wrapping
// ErrOutOfRangeBand.
func ClassifyBand(v float64) (Band, error) {
	switch {
	case math.IsNaN(v) || v < 0 || v > bandUpperLimit:
		return BandOutOfRange, fmt.Errorf("%w: %g", ErrOutOfRangeBand, v)
	case v < bandModerateFrom:
		return BandLow, nil
	case v < bandHighFrom:
		return BandModerate, nil
	case v < bandVeryHighFrom:
		return BandHigh, nil
	default:
		return BandVeryHigh, nil
	}
}

// MarkerRadius scales the average down by ten and caps it at 20.
func MarkerRadius(avg float64) float64 {
	return math.Min(avg/10, maxMarkerRadius)
}

// MarkerColor is red above the poor-quality threshold and green otherwise.
func MarkerColor(avg float64) string {
	if avg > DefaultThreshold {
		return MarkerRed
	}
	return MarkerGreen
}

// GeoClusters averages PM2.5 and coordinates per location and assigns bands
// and marker encodings. Locations without reference coordinates or without
// readings are left out and listed in Skipped.
func GeoClusters(t *Table) GeoView {
	view := GeoView{Clusters: make([]GeoCluster, 0), Skipped: make([]SkippedLocation, 0)}

	for _, g := range groupByLocation(t.Rows) {
		var lats, lons []float64
		located := make([]Measurement, 0, len(g.Rows))
		for _, m := range g.Rows {
			if m.Coordinates == nil {
				continue
			}
			located = append(located, m)
			lats = append(lats, m.Coordinates.Lat())
			lons = append(lons, m.Coordinates.Lon())
		}
		if len(located) == 0 {
			view.Skipped = append(view.Skipped, SkippedLocation{Location: g.Location, Reason: "no reference coordinates"})
			continue
		}

		avg, _, ok := meanPM25(located)
		if !ok {
			view.Skipped = append(view.Skipped, SkippedLocation{Location: g.Location, Reason: "no PM2.5 readings"})
			continue
		}

		band, err := ClassifyBand(avg)
		c := GeoCluster{
			Location:     g.Location,
			AvgPM25:      avg,
			Latitude:     stat.Mean(lats, nil),
			Longitude:    stat.Mean(lons, nil),
			Band:         band,
			MarkerRadius: MarkerRadius(avg),
			MarkerColor:  MarkerColor(avg),
			Err:          err,
		}
		if err != nil {
			c.Error = err.Error()
		}
		view.Clusters = append(view.Clusters, c)
	}

	if len(view.Clusters) > 0 {
		points := make(orb.MultiPoint, 0, len(view.Clusters))
		lats := make([]float64, 0, len(view.Clusters))
		lons := make([]float64, 0, len(view.Clusters))
		for _, c := range view.Clusters {
			points = append(points, orb.Point{c.Longitude, c.Latitude})
			lats = append(lats, c.Latitude)
			lons = append(lons, c.Longitude)
		}
		view.Center = orb.Point{stat.Mean(lons, nil), stat.Mean(lats, nil)}
		view.Bounds = points.Bound()
	}

	return view
}

// OutOfRange returns the clusters whose average fell outside the bands.
func (v GeoView) OutOfRange() []GeoCluster {
	var out []GeoCluster
	for _, c := range v.Clusters {
		if c.Err != nil {
			out = append(out, c)
		}
	}
	return out
}
