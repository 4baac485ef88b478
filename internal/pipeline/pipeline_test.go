package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct {
	raw domain.RawTable
	err error
}

func (m *mockSource) LoadTable(_ context.Context) (domain.RawTable, error) {
	return m.raw, m.err
}

type mockPublisher struct {
	mu        sync.Mutex
	published []*domain.Views
	err       error
}

func (m *mockPublisher) PublishViews(_ context.Context, views *domain.Views) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, views)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func freezeClock(t *testing.T) {
	t.Helper()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})
}

func sampleTable() domain.RawTable {
	return domain.RawTable{
		Columns: []string{"year", "month", "day", "hour", "PM2.5", "TEMP", "location"},
		Rows: [][]string{
			{"2016", "12", "1", "0", "200", "-2", "Dongsi"},
			{"2016", "12", "1", "1", "180", "-3", "Dongsi"},
			{"2017", "2", "28", "23", "90", "1", "Dongsi"},
			{"2017", "2", "28", "23", "40", "2", "Tiantan"},
			{"2017", "2", "27", "23", "NA", "2", "Tiantan"},
			{"2017", "2", "28", "22", "500", "3", "Atlantis"},
			{"2017", "13", "1", "0", "60", "4", "Shunyi"},
		},
	}
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	freezeClock(t)
	pub := &mockPublisher{}
	metrics := newTestMetrics()

	p := pipeline.New(&mockSource{raw: sampleTable()}, pub, domain.DefaultOptions(), slog.Default(), metrics)
	assert.False(t, p.Ready())
	require.Error(t, p.CheckReadiness(context.Background()))

	views, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))
	stored, ok := p.Views()
	require.True(t, ok)
	assert.Same(t, views, stored)

	assert.Equal(t, time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC), views.GeneratedAt)
	assert.Equal(t, 7, views.Rows)
	assert.Equal(t, 1, views.Issues.UnparsableTimestamps)
	assert.Equal(t, 1, views.Issues.UnmatchedLocations)

	require.Len(t, views.Trends, 4)
	assert.Equal(t, "Dongsi", views.Trends[0].Location)

	assert.Equal(t, []domain.LocationCount{
		{Location: "Dongsi", Count: 2},
		{Location: "Atlantis", Count: 1},
	}, views.PoorQuality)

	require.NotEmpty(t, views.HighestAverages)
	assert.Equal(t, "Atlantis", views.HighestAverages[0].Location)

	assert.Len(t, views.Geo.Clusters, 3)
	assert.Equal(t, []domain.SkippedLocation{{Location: "Atlantis", Reason: "no reference coordinates"}}, views.Geo.Skipped)

	assert.NotEmpty(t, views.Profile.Summaries)
	assert.Equal(t, []string{"year", "month", "day", "hour", "PM2.5", "TEMP"}, views.Profile.Correlations.Columns)

	require.Len(t, pub.published, 1)
	assert.Same(t, views, pub.published[0])

	assert.InDelta(t, 7.0, testutil.ToFloat64(metrics.RowsIngested), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.UnparsableTimestamps), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.UnmatchedRows), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Runs), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.RunErrors), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.PipelineReady), 1e-9)
	assert.InDelta(t, float64(len(domain.ViewNames())), testutil.ToFloat64(metrics.ViewsPublished), 1e-9)
}

func TestPipeline_Run_NilPublisher(t *testing.T) {
	p := pipeline.New(&mockSource{raw: sampleTable()}, nil, domain.DefaultOptions(), slog.Default(), newTestMetrics())

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Ready())
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	freezeClock(t)
	p := pipeline.New(&mockSource{raw: sampleTable()}, nil, domain.DefaultOptions(), slog.Default(), newTestMetrics())

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)

	opts := []cmp.Option{
		cmpopts.EquateNaNs(),
		cmpopts.IgnoreFields(domain.GeoCluster{}, "Err"),
	}
	if diff := cmp.Diff(first, second, opts...); diff != "" {
		t.Fatalf("views differ between runs (-first +second):\n%s", diff)
	}
}

func TestPipeline_Run_SourceError(t *testing.T) {
	metrics := newTestMetrics()
	p := pipeline.New(&mockSource{err: errors.New("disk on fire")}, nil, domain.DefaultOptions(), slog.Default(), metrics)

	views, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, views)
	assert.Contains(t, err.Error(), "load table")
	assert.False(t, p.Ready())
	_, ok := p.Views()
	assert.False(t, ok)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RunErrors), 1e-9)
}

func TestPipeline_Run_FatalNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawTable
		want error
	}{
		{
			name: "empty input",
			raw:  domain.RawTable{Columns: []string{"location", "PM2.5"}},
			want: domain.ErrEmptyInput,
		},
		{
			name: "missing temporal fields",
			raw: domain.RawTable{
				Columns: []string{"location", "PM2.5", "year"},
				Rows:    [][]string{{"Dongsi", "10", "2016"}},
			},
			want: domain.ErrMissingTemporalFields,
		},
		{
			name: "missing pm2.5 column",
			raw: domain.RawTable{
				Columns: []string{"location", "date"},
				Rows:    [][]string{{"Dongsi", "2016-01-01"}},
			},
			want: domain.ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			p := pipeline.New(&mockSource{raw: tt.raw}, pub, domain.DefaultOptions(), slog.Default(), newTestMetrics())

			_, err := p.Run(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.False(t, p.Ready())
			assert.Empty(t, pub.published)
		})
	}
}

func TestPipeline_Run_FailedRunKeepsPreviousViews(t *testing.T) {
	src := &mockSource{raw: sampleTable()}
	p := pipeline.New(src, nil, domain.DefaultOptions(), slog.Default(), newTestMetrics())

	first, err := p.Run(context.Background())
	require.NoError(t, err)

	src.err = errors.New("file vanished")
	_, err = p.Run(context.Background())
	require.Error(t, err)

	stored, ok := p.Views()
	require.True(t, ok)
	assert.Same(t, first, stored)
	assert.True(t, p.Ready())
}

func TestPipeline_Run_PublishError(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	metrics := newTestMetrics()
	p := pipeline.New(&mockSource{raw: sampleTable()}, pub, domain.DefaultOptions(), slog.Default(), metrics)

	views, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish views")
	assert.NotNil(t, views, "views are still served when publishing fails")
	assert.True(t, p.Ready())
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.ViewsPublished), 1e-9)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	table, err := domain.Normalize(sampleTable())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pipeline.Analyze(ctx, domain.Enrich(table), domain.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_TopNLeavesPoorQualityUntruncated(t *testing.T) {
	table, err := domain.Normalize(sampleTable())
	require.NoError(t, err)

	opts := domain.DefaultOptions()
	opts.Threshold = 50
	opts.TopN = 1
	views, err := pipeline.Analyze(context.Background(), domain.Enrich(table), opts)
	require.NoError(t, err)

	assert.Len(t, views.HighestAverages, 1)
	assert.Equal(t, []domain.LocationCount{
		{Location: "Dongsi", Count: 3},
		{Location: "Atlantis", Count: 1},
		{Location: "Shunyi", Count: 1},
	}, views.PoorQuality)
}

func TestAnalyze_RespectsOptions(t *testing.T) {
	table, err := domain.Normalize(sampleTable())
	require.NoError(t, err)

	opts := domain.Options{Threshold: 50, WindowMonths: 1, TopN: 1, PoorQualityTopN: 2, HistogramBins: 4}
	views, err := pipeline.Analyze(context.Background(), domain.Enrich(table), opts)
	require.NoError(t, err)

	assert.Equal(t, opts, views.Options)
	assert.Len(t, views.PoorQuality, 2)
	assert.Len(t, views.HighestAverages, 1)
	for _, s := range views.Profile.Summaries {
		assert.LessOrEqual(t, len(s.Histogram), 4)
	}
}
