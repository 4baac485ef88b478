// Package domain derives air-quality views from hourly station readings.
//
// # Data Source
//
// The input is the Beijing multi-site air-quality dataset: one row per
// station and hour with pollutant concentrations (PM2.5, PM10, SO2, NO2, CO,
// O3) and weather readings (TEMP, PRES, DEWP, RAIN, wd, WSPM). The station
// column is named "location". Rows carry either a "date" column or the four
// integer columns year, month, day and hour.
//
// # Conventions
//
// Missing values:
//
//	"", "NA", "NaN", "null" and "None" (any case) are missing. A missing or
//	unparsable PM2.5 is NaN and is skipped by every mean and count.
//
// Timestamps:
//
//	Hour resolution, UTC. A timestamp that cannot be derived leaves the row's
//	Time at the zero value; the row is then ignored by temporal views and
//	RFM recency but still counted elsewhere.
//
// Seasons:
//
//	season = (month % 12) / 3 + 1, 1 Winter (Dec-Feb), 2 Spring (Mar-May),
//	3 Summer (Jun-Aug), 4 Fall (Sep-Nov). A Northern Hemisphere
//	meteorological approximation.
//
// Severity bands (average PM2.5, µg/m³):
//
//	[0, 50) Low | [50, 100) Moderate | [100, 150) High | [150, 300] Very High
//	Outside [0, 300]: Error:OutOfRange, reported on the cluster, never clamped.
//
// Map markers:
//
//	radius = min(avg / 10, 20); red when avg > 150, green otherwise.
//
// # Station Reference
//
// Coordinates come from a fixed twelve-station table (see [LookupStation]).
// Locations outside it keep nil coordinates and are listed as skipped by
// [GeoClusters].
package domain
