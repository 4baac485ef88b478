package domain

import (
	"fmt"
	"slices"
)

// Enrich left-joins the station reference onto every row and returns a new
// table with the same row order and count. Rows whose location has no
// reference entry keep nil Coordinates and stay in the table; one
// ErrUnmatchedLocation issue is recorded per distinct unmatched location.
func Enrich(t *Table) *Table {
	out := t.clone()
	for _, col := range []string{ColumnLatitude, ColumnLongitude} {
		if !slices.Contains(out.Columns, col) {
			out.Columns = append(out.Columns, col)
		}
	}

	unmatched := make(map[string]int)
	var order []string

	for i := range out.Rows {
		p, ok := LookupStation(out.Rows[i].Location)
		if !ok {
			out.Rows[i].Coordinates = nil
			if _, seen := unmatched[out.Rows[i].Location]; !seen {
				order = append(order, out.Rows[i].Location)
			}
			unmatched[out.Rows[i].Location]++
			continue
		}
		out.Rows[i].Coordinates = &p
	}

	for _, loc := range order {
		out.Issues = append(out.Issues,
			fmt.Errorf("%w: %q (%d rows)", ErrUnmatchedLocation, loc, unmatched[loc]))
	}

	return out
}
