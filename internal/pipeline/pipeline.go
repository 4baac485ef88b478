package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"golang.org/x/sync/errgroup"
)

// TableSource reads the raw input table of one run.
type TableSource interface {
	LoadTable(ctx context.Context) (domain.RawTable, error)
}

// ViewPublisher hands the derived views of a run to a downstream consumer.
type ViewPublisher interface {
	PublishViews(ctx context.Context, views *domain.Views) error
}

// Pipeline orchestrates the load-normalize-enrich-analyze run and holds the
// views of the last successful run.
type Pipeline struct {
	source    TableSource
	publisher ViewPublisher
	opts      domain.Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu    sync.RWMutex
	views *domain.Views
}

// New creates a Pipeline. Pass a nil publisher to keep the views in memory
// only.
func New(source TableSource, publisher ViewPublisher, opts domain.Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:    source,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has completed, or an error describing
// why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// Ready reports whether at least one run has completed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Views returns the views of the last successful run.
func (p *Pipeline) Views() (*domain.Views, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.views, p.views != nil
}

// Run executes one full pass over the source. A failed run leaves the views
// of the previous run in place.
func (p *Pipeline) Run(ctx context.Context) (*domain.Views, error) {
	start := time.Now()
	p.metrics.Runs.Inc()

	views, err := p.run(ctx)
	if err != nil {
		p.metrics.RunErrors.Inc()
		p.logger.Error("pipeline run failed", "error", err)
		return nil, err
	}

	p.mu.Lock()
	p.views = views
	p.mu.Unlock()
	p.ready.Store(true)
	p.metrics.PipelineReady.Set(1)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("pipeline run complete",
		"rows", views.Rows,
		"locations", len(views.Trends),
		"unparsable_timestamps", views.Issues.UnparsableTimestamps,
		"unmatched_locations", views.Issues.UnmatchedLocations,
		"duration", time.Since(start),
	)

	if p.publisher != nil {
		if err := p.publisher.PublishViews(ctx, views); err != nil {
			p.metrics.RunErrors.Inc()
			p.logger.Error("publish views failed", "error", err)
			return views, fmt.Errorf("publish views: %w", err)
		}
		p.metrics.ViewsPublished.Add(float64(len(domain.ViewNames())))
	}

	return views, nil
}

func (p *Pipeline) run(ctx context.Context) (*domain.Views, error) {
	raw, err := p.source.LoadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	normalized, err := domain.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	table := domain.Enrich(normalized)
	p.recordIngest(table)

	views, err := Analyze(ctx, table, p.opts)
	if err != nil {
		return nil, err
	}
	p.metrics.OutOfRangeBands.Add(float64(len(views.Geo.OutOfRange())))
	for _, c := range views.Geo.OutOfRange() {
		p.logger.Warn("location average outside band range",
			"location", c.Location, "avg_pm25", c.AvgPM25)
	}
	return views, nil
}

func (p *Pipeline) recordIngest(t *domain.Table) {
	issues := domain.SummarizeIssues(t)
	p.metrics.RowsIngested.Add(float64(t.Len()))
	p.metrics.UnparsableTimestamps.Add(float64(issues.UnparsableTimestamps))
	for _, err := range t.Issues {
		if errors.Is(err, domain.ErrUnmatchedLocation) {
			p.logger.Warn("location has no reference coordinates", "error", err)
		}
	}
	p.metrics.UnmatchedRows.Add(float64(unmatchedRows(t)))
}

func unmatchedRows(t *domain.Table) int {
	n := 0
	for _, m := range t.Rows {
		if m.Coordinates == nil {
			n++
		}
	}
	return n
}

// Analyze derives every view from an enriched table. The analyzers only read
// the table, so they run concurrently.
func Analyze(ctx context.Context, t *domain.Table, opts domain.Options) (*domain.Views, error) {
	views := &domain.Views{
		GeneratedAt: domain.Now(),
		Rows:        t.Len(),
		Columns:     append([]string(nil), t.Columns...),
		Issues:      domain.SummarizeIssues(t),
		Options:     opts,
	}

	g, ctx := errgroup.WithContext(ctx)
	stage := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	stage(func() { views.Trends = domain.TrendsFor(t, opts.WindowMonths) })
	stage(func() { views.PoorQuality = domain.PoorQualityCounts(t, opts.Threshold, opts.PoorQualityTopN) })
	stage(func() { views.HighestAverages = domain.HighestAverages(t, opts.TopN) })
	stage(func() { views.RFM = domain.RFMScores(t) })
	stage(func() { views.Geo = domain.GeoClusters(t) })
	stage(func() {
		views.Profile = domain.Profile{
			Summaries:    domain.Describe(t, opts.HistogramBins),
			Correlations: domain.Correlations(t),
		}
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return views, nil
}
