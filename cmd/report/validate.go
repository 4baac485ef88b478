package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/urfave/cli/v2"
)

// phase tracks pass/fail for a validation phase. Warnings only fail a phase
// in strict mode.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed(strict bool) bool {
	return len(p.errors) == 0 && (!strict || len(p.warnings) == 0)
}

func validateCommand(c *cli.Context) error {
	logger := observability.NewWriterLogger(c.App.ErrWriter, c.String("log-level"), "text")
	raw, err := csvfile.NewSource(c.String("data"), logger).LoadTable(c.Context)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	phases := validate(raw)
	strict := c.Bool("strict")
	if !printPhases(c.App.Writer, phases, strict) {
		return cli.Exit("validation failed", 1)
	}
	return nil
}

// validate runs the schema phase and, when the table normalizes, the
// timestamp, location and band phases.
func validate(raw domain.RawTable) []*phase {
	schema := &phase{name: "Schema"}
	table, err := domain.Normalize(raw)
	if err != nil {
		schema.errorf("%v", err)
		return []*phase{schema}
	}
	if len(table.NumericColumns) == 0 {
		schema.errorf("no numeric columns")
	}

	enriched := domain.Enrich(table)
	return []*phase{
		schema,
		validateTimestamps(enriched),
		validateLocations(enriched),
		validateBands(enriched),
	}
}

func validateTimestamps(t *domain.Table) *phase {
	p := &phase{name: "Timestamps"}
	for _, err := range t.Issues {
		if errors.Is(err, domain.ErrUnparsableTimestamp) {
			p.warnf("%v", err)
		}
	}
	timed := 0
	for _, m := range t.Rows {
		if m.HasTime() {
			timed++
		}
	}
	if timed == 0 {
		p.errorf("no row has a valid timestamp")
	}
	return p
}

func validateLocations(t *domain.Table) *phase {
	p := &phase{name: "Locations"}
	for _, err := range t.Issues {
		if errors.Is(err, domain.ErrUnmatchedLocation) {
			p.warnf("%v", err)
		}
	}
	return p
}

func validateBands(t *domain.Table) *phase {
	p := &phase{name: "Bands"}
	geo := domain.GeoClusters(t)
	for _, c := range geo.OutOfRange() {
		p.warnf("%s: %v", c.Location, c.Err)
	}
	for _, s := range geo.Skipped {
		p.warnf("%s skipped: %s", s.Location, s.Reason)
	}
	return p
}

// printPhases writes one block per phase and reports whether all passed.
func printPhases(w io.Writer, phases []*phase, strict bool) bool {
	ok := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed(strict) {
			status = "FAIL"
			ok = false
		}
		fmt.Fprintf(w, "[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warn := range p.warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
	return ok
}
