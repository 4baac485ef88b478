package domain

import "errors"

// Fatal input errors. Normalize returns them wrapped; the run must stop.
var (
	ErrEmptyInput            = errors.New("input table has no rows")
	ErrMissingTemporalFields = errors.New("no date column and missing year/month/day/hour")
	ErrMissingColumn         = errors.New("required column missing")
)

// Per-row errors recovered locally and recorded in Table.Issues.
var (
	ErrUnparsableTimestamp = errors.New("unparsable timestamp")
	ErrUnmatchedLocation   = errors.New("location has no reference coordinates")
)

// ErrOutOfRangeBand marks an average outside the defined severity bins.
var ErrOutOfRangeBand = errors.New("value outside severity band range")
