package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupStation(t *testing.T) {
	p, ok := LookupStation(testDongsi)
	require.True(t, ok)
	assert.Equal(t, 39.929, p.Lat())
	assert.Equal(t, 116.417, p.Lon())

	_, ok = LookupStation("dongsi")
	assert.False(t, ok, "matching is case-sensitive")

	_, ok = LookupStation(testUnknown)
	assert.False(t, ok)
}

func TestStations(t *testing.T) {
	stations := Stations()
	require.Len(t, stations, 12)
	assert.Equal(t, "Aotizhongxin", stations[0].Name)
	assert.Equal(t, "Wanshouxigong", stations[11].Name)

	// the returned slice is a copy
	stations[0].Latitude = 0
	p, _ := LookupStation("Aotizhongxin")
	assert.Equal(t, 39.998, p.Lat())
}

func TestEnrich(t *testing.T) {
	ts := at(2016, 1, 1, 0)
	input := &Table{
		Columns:        []string{ColumnLocation, ColumnPM25, ColumnDate},
		NumericColumns: []string{ColumnPM25},
		Rows: []Measurement{
			reading(testDongsi, ts, 10),
			reading(testUnknown, ts, 20),
			reading("dongsi", ts, 30),
			reading(testUnknown, ts, 40),
			reading(testTiantan, ts, 50),
		},
	}

	out := Enrich(input)

	require.Len(t, out.Rows, len(input.Rows))
	for i := range input.Rows {
		assert.Equal(t, input.Rows[i].Location, out.Rows[i].Location, "row order preserved")
		assert.Nil(t, input.Rows[i].Coordinates, "input table untouched")
	}

	require.NotNil(t, out.Rows[0].Coordinates)
	assert.Equal(t, 39.929, out.Rows[0].Coordinates.Lat())
	assert.Equal(t, 116.417, out.Rows[0].Coordinates.Lon())
	assert.Nil(t, out.Rows[1].Coordinates)
	assert.Nil(t, out.Rows[2].Coordinates)
	require.NotNil(t, out.Rows[4].Coordinates)
	assert.Equal(t, 39.886, out.Rows[4].Coordinates.Lat())

	require.Len(t, out.Issues, 2)
	assert.ErrorIs(t, out.Issues[0], ErrUnmatchedLocation)
	assert.Contains(t, out.Issues[0].Error(), testUnknown)
	assert.Contains(t, out.Issues[0].Error(), "2 rows")
	assert.Contains(t, out.Issues[1].Error(), "dongsi")

	assert.Contains(t, out.Columns, ColumnLatitude)
	assert.Contains(t, out.Columns, ColumnLongitude)
	assert.NotContains(t, input.Columns, ColumnLatitude)
}

func TestEnrich_RowsDoNotShareCoordinates(t *testing.T) {
	ts := at(2016, 1, 1, 0)
	out := enrichedTable(reading(testDongsi, ts, 1), reading(testTiantan, ts, 2))

	require.NotNil(t, out.Rows[0].Coordinates)
	require.NotNil(t, out.Rows[1].Coordinates)
	assert.NotEqual(t, *out.Rows[0].Coordinates, *out.Rows[1].Coordinates)
}
