package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
	"github.com/urfave/cli/v2"
)

func reportCommand(c *cli.Context) error {
	names := c.StringSlice("view")
	for _, name := range names {
		if !slices.Contains(domain.ViewNames(), name) {
			return cli.Exit(fmt.Sprintf("unknown view %q (want one of %s)", name, strings.Join(domain.ViewNames(), ", ")), 2)
		}
	}

	logger := observability.NewWriterLogger(c.App.ErrWriter, c.String("log-level"), "text")
	opts := domain.Options{
		Threshold:       c.Float64("threshold"),
		WindowMonths:    c.Int("window-months"),
		TopN:            c.Int("top"),
		PoorQualityTopN: c.Int("poor-quality-top"),
		HistogramBins:   c.Int("bins"),
	}
	p := pipeline.New(csvfile.NewSource(c.String("data"), logger), nil, opts, logger, observability.NewUnregisteredMetrics())

	views, err := p.Run(c.Context)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	var out any = views
	switch len(names) {
	case 0:
	case 1:
		out, _ = views.Named(names[0])
	default:
		selected := make(map[string]any, len(names))
		for _, name := range names {
			selected[name], _ = views.Named(name)
		}
		out = selected
	}
	return writeJSON(c.App.Writer, out, c.Bool("pretty"))
}

func stationsCommand(c *cli.Context) error {
	return writeJSON(c.App.Writer, domain.Stations(), true)
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
