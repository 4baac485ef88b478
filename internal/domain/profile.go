package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultHistogramBins is the bucket count used for column distributions.
const DefaultHistogramBins = 30

// HistogramBin counts the values in [From, To).
type HistogramBin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// ColumnSummary describes the distribution of one numeric column.
type ColumnSummary struct {
	Column    string         `json:"column"`
	Count     int            `json:"count"`
	Mean      float64        `json:"mean"`
	Std       float64        `json:"std"`
	Min       float64        `json:"min"`
	Q1        float64        `json:"q1"`
	Median    float64        `json:"median"`
	Q3        float64        `json:"q3"`
	Max       float64        `json:"max"`
	Histogram []HistogramBin `json:"histogram,omitempty"`
}

// CorrelationMatrix is a square Pearson matrix over Columns. A nil cell means
// the coefficient is undefined (fewer than two complete pairs or a constant
// column).
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// Profile is the exploratory summary of the numeric columns.
type Profile struct {
	Summaries    []ColumnSummary   `json:"summaries"`
	Correlations CorrelationMatrix `json:"correlations"`
}

// Describe summarizes every numeric column that has at least one value.
// Histograms use bins equal-width buckets between min and max; bins <= 0
// leaves them out.
func Describe(t *Table, bins int) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.NumericColumns))
	for _, col := range t.NumericColumns {
		values := columnValues(t, col)
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)

		s := ColumnSummary{
			Column: col,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Min:    values[0],
			Q1:     stat.Quantile(0.25, stat.LinInterp, values, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, values, nil),
			Q3:     stat.Quantile(0.75, stat.LinInterp, values, nil),
			Max:    values[len(values)-1],
		}
		if len(values) > 1 {
			s.Std = stat.StdDev(values, nil)
		}
		if bins > 0 {
			s.Histogram = histogram(values, bins)
		}
		out = append(out, s)
	}
	return out
}

// Correlations computes the Pearson coefficient of every pair of numeric
// columns over the rows where both values are present.
func Correlations(t *Table) CorrelationMatrix {
	cols := t.NumericColumns
	m := CorrelationMatrix{
		Columns: append([]string(nil), cols...),
		Values:  make([][]*float64, len(cols)),
	}
	for i := range cols {
		m.Values[i] = make([]*float64, len(cols))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwiseCorrelation(t, cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwiseCorrelation(t *Table, a, b string) *float64 {
	xs := make([]float64, 0, len(t.Rows))
	ys := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		x, y := row.Value(a), row.Value(b)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return nil
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return &r
}

func columnValues(t *Table, column string) []float64 {
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v := row.Value(column); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// histogram buckets sorted values into equal-width bins. The top divider is
// nudged past max so the largest value lands in the last bin.
func histogram(sorted []float64, bins int) []HistogramBin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		bins = 1
	}

	dividers := make([]float64, bins+1)
	if lo == hi {
		dividers[0] = lo
	} else {
		floats.Span(dividers, lo, hi)
	}
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{From: dividers[i], To: dividers[i+1], Count: int(counts[i])}
	}
	return out
}
