// Command report runs the air-quality pipeline once over a CSV file and
// prints the derived views as JSON.
//
// Usage:
//
//	go run ./cmd/report --data data/main_data.csv --view rfm --view geo
//	go run ./cmd/report validate --data data/main_data.csv --strict
//	go run ./cmd/report stations
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "report",
		Usage:  "derive air-quality views from a measurement CSV",
		Action: reportCommand,
		Flags: []cli.Flag{
			dataFlag(),
			logLevelFlag(),
			&cli.StringSliceFlag{
				Name:    "view",
				Aliases: []string{"v"},
				Usage:   "view to print (trends, poor-quality, highest-averages, rfm, geo, profile); repeatable, default all",
			},
			&cli.Float64Flag{
				Name:    "threshold",
				EnvVars: []string{"PM25_THRESHOLD"},
				Value:   150,
			},
			&cli.IntFlag{
				Name:    "window-months",
				EnvVars: []string{"RECENT_WINDOW_MONTHS"},
				Value:   6,
			},
			&cli.IntFlag{
				Name:    "top",
				EnvVars: []string{"TOP_N"},
				Value:   5,
				Usage:   "locations kept in the highest-averages ranking",
			},
			&cli.IntFlag{
				Name:    "poor-quality-top",
				EnvVars: []string{"POOR_QUALITY_TOP_N"},
				Usage:   "locations kept in the poor-quality counts; 0 keeps every location",
			},
			&cli.IntFlag{
				Name:    "bins",
				EnvVars: []string{"HISTOGRAM_BINS"},
				Value:   30,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "indent JSON output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "check a CSV for schema, timestamp, location and band problems",
				Action: validateCommand,
				Flags: []cli.Flag{
					dataFlag(),
					logLevelFlag(),
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "fail on recoverable issues too",
					},
				},
			},
			{
				Name:   "stations",
				Usage:  "print the station reference table",
				Action: stationsCommand,
			},
		},
	}
}

func dataFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		EnvVars: []string{"DATA_PATH"},
		Value:   "data/main_data.csv",
		Usage:   "path to the measurement CSV",
	}
}

func logLevelFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-level",
		EnvVars: []string{"LOG_LEVEL"},
		Value:   "warn",
	}
}
