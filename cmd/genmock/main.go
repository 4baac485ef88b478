// Command genmock writes a synthetic hourly measurement CSV for the twelve
// reference stations, shaped like the Beijing multi-site dataset. It runs the
// generated table through the domain package and prints summary statistics
// so fixture changes are visible at a glance.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/main_data.csv \
//	  -start 2016-03-01 -days 365 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var header = []string{"No", "year", "month", "day", "hour", "PM2.5", "PM10", "TEMP", "PRES", "DEWP", "wd", "WSPM", "location"}

var windDirections = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

// genOptions controls the shape of the synthetic dataset.
type genOptions struct {
	start    time.Time
	days     int
	seed     uint64
	naRate   float64
	stations []string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated CSV")
	start := flag.String("start", "2016-03-01", "first day, YYYY-MM-DD")
	days := flag.Int("days", 30, "number of days to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	naRate := flag.Float64("na-rate", 0.01, "fraction of PM2.5 cells left as NA")
	stations := flag.String("stations", "", "comma-separated station subset (default all)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	startDay, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if *days <= 0 {
		return fmt.Errorf("-days must be positive")
	}

	opts := genOptions{start: startDay, days: *days, seed: *seed, naRate: *naRate}
	if *stations != "" {
		opts.stations = strings.Split(*stations, ",")
	}

	records := generate(opts)
	if err := writeCSV(*out, records); err != nil {
		return err
	}
	fmt.Printf("wrote %d rows to %s\n", len(records)-1, *out)

	return printStats(records)
}

// generate returns the header followed by one row per station per hour.
func generate(opts genOptions) [][]string {
	stations := opts.stations
	if len(stations) == 0 {
		for _, s := range domain.Stations() {
			stations = append(stations, s.Name)
		}
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	records := [][]string{header}
	no := 1

	for si, station := range stations {
		base := 55 + 6*float64(si) // per-station pollution level
		for h := 0; h < opts.days*24; h++ {
			ts := opts.start.Add(time.Duration(h) * time.Hour)
			pm := base * seasonalFactor(ts.Month()) * (1 + 0.4*math.Sin(float64(ts.Hour())/24*2*math.Pi))
			pm = math.Max(2, pm+rng.NormFloat64()*25)

			pmCell := strconv.FormatFloat(math.Round(pm), 'f', -1, 64)
			if rng.Float64() < opts.naRate {
				pmCell = "NA"
			}
			temp := 13 - 15*math.Cos(float64(ts.YearDay())/365*2*math.Pi) + rng.NormFloat64()*2

			records = append(records, []string{
				strconv.Itoa(no),
				strconv.Itoa(ts.Year()),
				strconv.Itoa(int(ts.Month())),
				strconv.Itoa(ts.Day()),
				strconv.Itoa(ts.Hour()),
				pmCell,
				strconv.FormatFloat(math.Round(pm*1.3), 'f', -1, 64),
				strconv.FormatFloat(math.Round(temp*10)/10, 'f', -1, 64),
				strconv.FormatFloat(math.Round((1012+rng.NormFloat64()*8)*10)/10, 'f', -1, 64),
				strconv.FormatFloat(math.Round((temp-8+rng.NormFloat64()*3)*10)/10, 'f', -1, 64),
				windDirections[rng.IntN(len(windDirections))],
				strconv.FormatFloat(math.Round(rng.Float64()*60)/10, 'f', -1, 64),
				station,
			})
			no++
		}
	}
	return records
}

// seasonalFactor raises winter levels the way heating season does in the
// source data.
func seasonalFactor(m time.Month) float64 {
	switch domain.SeasonName(domain.SeasonIndex(m)) {
	case domain.SeasonWinter:
		return 1.6
	case domain.SeasonFall:
		return 1.2
	case domain.SeasonSummer:
		return 0.8
	default:
		return 1.0
	}
}

func writeCSV(path string, records [][]string) error {
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fmt.Errorf("build dataframe: %w", df.Err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close() //nolint:errcheck // already failing
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printStats(records [][]string) error {
	table, err := domain.Normalize(domain.RawTable{Columns: records[0], Rows: records[1:]})
	if err != nil {
		return fmt.Errorf("normalize generated data: %w", err)
	}
	table = domain.Enrich(table)
	issues := domain.SummarizeIssues(table)

	fmt.Printf("\n--- Stats ---\n")
	fmt.Printf("rows: %d  unparsable timestamps: %d  unmatched locations: %d\n",
		table.Len(), issues.UnparsableTimestamps, issues.UnmatchedLocations)

	fmt.Printf("\nHighest averages:\n")
	for _, m := range domain.HighestAverages(table, 0) {
		fmt.Printf("  %-14s %6.1f\n", m.Location, m.MeanPM25)
	}

	fmt.Printf("\nReadings above %.0f:\n", domain.DefaultThreshold)
	for _, c := range domain.PoorQualityCounts(table, domain.DefaultThreshold, 0) {
		fmt.Printf("  %-14s %6d\n", c.Location, c.Count)
	}

	fmt.Printf("\nBands:\n")
	for _, c := range domain.GeoClusters(table).Clusters {
		fmt.Printf("  %-14s %s\n", c.Location, c.Band)
	}
	return nil
}
