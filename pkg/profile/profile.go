// Package profile aggregates per-column statistics into dataset-level
// quality summaries: completeness, uniqueness, validity, outliers, and
// a composite score.
//
// Every output here is derived, never patched: summaries are rebuilt
// from the current rows each time, so derived state cannot drift from
// source state.
package profile

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
	"github.com/Sumee7/project1autoinsight/pkg/stats"
)

// Summary is the dataset-level schema and quality summary.
type Summary struct {
	RowCount          int             `json:"row_count"`
	ColumnCount       int             `json:"column_count"`
	Columns           []schema.Column `json:"columns"`
	DuplicateRowCount int             `json:"duplicate_row_count"`
}

// Issues is a derived view bucketing summary columns by problem kind.
type Issues struct {
	MissingValues []schema.Column `json:"missing_values"`
	InvalidTypes  []schema.Column `json:"invalid_types"`
	Outliers      []schema.Column `json:"outliers"`
	Duplicates    int             `json:"duplicates"`
}

// Report holds the weighted data-quality score.
type Report struct {
	Completeness float64 `json:"completeness"`
	Uniqueness   float64 `json:"uniqueness"`
	Validity     float64 `json:"validity"`
	Overall      float64 `json:"overall"`
}

// ValueCount is one frequency-table entry.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile holds per-column descriptive statistics.
type ColumnProfile struct {
	Name             string       `json:"name"`
	Type             schema.Type  `json:"type"`
	NonNullCount     int          `json:"non_null_count"`
	NullCount        int          `json:"null_count"`
	UniqueCount      int          `json:"unique_count"`
	MissingRate      float64      `json:"missing_rate"`
	CardinalityRatio float64      `json:"cardinality_ratio"`
	Mode             string       `json:"mode,omitempty"`
	TopValues        []ValueCount `json:"top_values,omitempty"`

	// Numeric-only fields.
	Min    float64 `json:"min,omitempty"`
	Max    float64 `json:"max,omitempty"`
	Mean   float64 `json:"mean,omitempty"`
	Median float64 `json:"median,omitempty"`
	StdDev float64 `json:"std_dev,omitempty"`

	Outliers  []float64 `json:"outliers,omitempty"`
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// Profiler computes summaries and profiles under a given set of
// heuristic weights. Construct one per dataset session.
type Profiler struct {
	Weights  config.ScoreWeights
	Outliers config.OutlierConfig
	TopN     int
}

// New creates a profiler with the default heuristics.
func New() *Profiler {
	cfg := config.Default()
	return &Profiler{
		Weights:  cfg.Score,
		Outliers: cfg.Outliers,
		TopN:     10,
	}
}

// FromConfig creates a profiler wired to loaded configuration.
func FromConfig(cfg *config.Config) *Profiler {
	return &Profiler{
		Weights:  cfg.Score,
		Outliers: cfg.Outliers,
		TopN:     10,
	}
}

// Summarize rebuilds the dataset summary from the current rows. Column
// missing/invalid counts are recomputed from the typed cells, so the
// summary stays truthful after any transformation.
func (p *Profiler) Summarize(ds *model.Dataset, cols []schema.Column) Summary {
	s := Summary{
		RowCount:    ds.NumRows(),
		ColumnCount: ds.NumColumns(),
		Columns:     make([]schema.Column, len(cols)),
	}

	for i, col := range cols {
		entry := schema.Column{Name: col.Name, Type: col.Type}
		cells := ds.Column(col.Name)
		for _, c := range cells {
			if c.IsMissing() {
				entry.MissingCount++
				continue
			}
			if !cellValid(c, col.Type) {
				entry.InvalidCount++
			}
		}
		if col.Type == schema.TypeNumber {
			entry.OutlierCount = len(p.IQROutliers(numericValues(cells)))
		}
		s.Columns[i] = entry
	}

	s.DuplicateRowCount = DuplicateRows(ds)
	return s
}

// cellValid checks a typed cell against its column type.
func cellValid(c model.Cell, t schema.Type) bool {
	switch t {
	case schema.TypeNumber:
		return c.Kind() == model.KindNumber
	case schema.TypeDate:
		return schema.IsValid(c.String(), schema.TypeDate)
	default:
		return true
	}
}

// DuplicateRows counts extra copies beyond the first occurrence of each
// row signature. This is the canonical duplicate definition shared by
// the profiler, the query layer, and cleaning.
func DuplicateRows(ds *model.Dataset) int {
	counts := make(map[string]int, ds.NumRows())
	for i := 0; i < ds.NumRows(); i++ {
		counts[ds.Signature(i)]++
	}
	dups := 0
	for _, n := range counts {
		if n > 1 {
			dups += n - 1
		}
	}
	return dups
}

// DeriveIssues filters a summary into cleaning buckets. It is a pure
// function of the summary so the two can never drift apart.
func DeriveIssues(s Summary) Issues {
	issues := Issues{Duplicates: s.DuplicateRowCount}
	for _, col := range s.Columns {
		if col.MissingCount > 0 {
			issues.MissingValues = append(issues.MissingValues, col)
		}
		if col.InvalidCount > 0 {
			issues.InvalidTypes = append(issues.InvalidTypes, col)
		}
		if col.OutlierCount > 0 {
			issues.Outliers = append(issues.Outliers, col)
		}
	}
	return issues
}

// Score computes the weighted quality report. The weighting and the
// mixed-type validity credit are heuristics held in configuration.
func (p *Profiler) Score(ds *model.Dataset) Report {
	rows := ds.NumRows()
	cols := ds.NumColumns()
	totalCells := rows * cols

	r := Report{Completeness: 100, Uniqueness: 100, Validity: 100}

	if totalCells > 0 {
		nulls := 0
		for _, row := range ds.Rows {
			for _, c := range row {
				if c.IsMissing() {
					nulls++
				}
			}
		}
		r.Completeness = float64(totalCells-nulls) / float64(totalCells) * 100
	}

	if rows > 0 {
		r.Uniqueness = float64(ds.DistinctSignatures()) / float64(rows) * 100
	}

	if totalCells > 0 {
		var validCells float64
		for _, name := range ds.Columns {
			kinds := make(map[model.CellKind]struct{}, 3)
			for _, c := range ds.Column(name) {
				if !c.IsMissing() {
					kinds[c.Kind()] = struct{}{}
				}
			}
			switch len(kinds) {
			case 0, 1:
				// Homogeneous (or empty) column: full credit.
				validCells += float64(rows)
			default:
				validCells += float64(rows) * p.Weights.MixedTypeCredit
			}
		}
		r.Validity = validCells / float64(totalCells) * 100
	}

	r.Overall = clamp(r.Completeness*p.Weights.Completeness+
		r.Uniqueness*p.Weights.Uniqueness+
		r.Validity*p.Weights.Validity+
		p.Weights.Baseline, 0, 100)
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Column profiles one column.
func (p *Profiler) Column(ds *model.Dataset, col schema.Column) ColumnProfile {
	cells := ds.Column(col.Name)
	cp := ColumnProfile{Name: col.Name, Type: col.Type}

	freq := make(map[string]int)
	display := make(map[string]string)
	for _, c := range cells {
		if c.IsMissing() {
			cp.NullCount++
			continue
		}
		cp.NonNullCount++
		key := strings.ToLower(c.String())
		freq[key]++
		if _, ok := display[key]; !ok {
			display[key] = c.String()
		}
	}

	cp.UniqueCount = len(freq)
	if total := cp.NonNullCount + cp.NullCount; total > 0 {
		cp.MissingRate = float64(cp.NullCount) / float64(total)
	}
	if cp.NonNullCount > 0 {
		cp.CardinalityRatio = float64(cp.UniqueCount) / float64(cp.NonNullCount)
	}

	cp.TopValues = topValues(freq, display, p.TopN)
	if len(cp.TopValues) > 0 {
		cp.Mode = cp.TopValues[0].Value
	}

	if col.Type == schema.TypeNumber {
		values := numericValues(cells)
		if len(values) > 0 {
			cp.Min = stats.Min(values)
			cp.Max = stats.Max(values)
			cp.Mean = stats.Mean(values)
			cp.Median = stats.Median(values)
			cp.StdDev = stats.StdDev(values)
			cp.Outliers = p.IQROutliers(values)
			cp.Anomalies = p.ZAnomalies(values)
		}
	}

	return cp
}

// Columns profiles every column. Columns are independent, so the work
// fans out across a bounded errgroup and merges in column order.
func (p *Profiler) Columns(ctx context.Context, ds *model.Dataset, cols []schema.Column) ([]ColumnProfile, error) {
	profiles := make([]ColumnProfile, len(cols))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, col := range cols {
		i, col := i, col
		g.Go(func() error {
			profiles[i] = p.Column(ds, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// topValues sorts the frequency table descending by count (ties by
// value for determinism) and keeps the first n entries.
func topValues(freq map[string]int, display map[string]string, n int) []ValueCount {
	entries := make([]ValueCount, 0, len(freq))
	for k, c := range freq {
		entries = append(entries, ValueCount{Value: display[k], Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func numericValues(cells []model.Cell) []float64 {
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if v, ok := c.Float(); ok {
			out = append(out, v)
		}
	}
	return out
}
