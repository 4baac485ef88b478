package domain

import (
	"sort"

	"github.com/paulmach/orb"
)

// Station is a monitoring site in the fixed reference table.
type Station struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// stationCoordinates holds the twelve Beijing monitoring sites covered by the
// dataset, as (lon, lat) points. Built once and never written.
var stationCoordinates = map[string]orb.Point{
	"Aotizhongxin":  {116.326, 39.998},
	"Changping":     {116.231, 40.215},
	"Dongsi":        {116.417, 39.929},
	"Dingling":      {116.220, 40.291},
	"Guanyuan":      {116.345, 39.929},
	"Gucheng":       {116.184, 39.911},
	"Huairou":       {116.631, 40.375},
	"Nongzhanguan":  {116.455, 39.937},
	"Shunyi":        {116.656, 40.126},
	"Tiantan":       {116.407, 39.886},
	"Wanliu":        {116.305, 39.986},
	"Wanshouxigong": {116.351, 39.878},
}

// LookupStation returns the reference coordinates for a location. Matching
// is exact and case-sensitive.
func LookupStation(name string) (orb.Point, bool) {
	p, ok := stationCoordinates[name]
	return p, ok
}

// Stations returns a copy of the reference table sorted by name.
func Stations() []Station {
	out := make([]Station, 0, len(stationCoordinates))
	for name, p := range stationCoordinates {
		out = append(out, Station{Name: name, Latitude: p.Lat(), Longitude: p.Lon()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
