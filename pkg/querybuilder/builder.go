// Package querybuilder executes structured queries over a dataset.
// The pipeline order is fixed: filters, then grouping, then projection,
// then ordering, then limit. Grouping runs before projection because
// aggregation reads source columns the projection may drop; ordering
// runs after grouping because sort keys may be aggregate-derived names
// like revenue_sum.
package querybuilder

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Sumee7/project1autoinsight/internal/model"
)

// Aggregation names an aggregate function over one column.
// Supported functions: sum, avg, count, min, max.
type Aggregation struct {
	Column string `json:"column"`
	Fn     string `json:"fn"`
}

// Name returns the derived result column, e.g. revenue_sum.
func (a Aggregation) Name() string {
	col := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(a.Column), " ", "_"))
	return col + "_" + a.Fn
}

// OrderBy names a sort key, which may be an aggregate-derived column.
type OrderBy struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// Config describes one query.
type Config struct {
	Select       []string       `json:"select,omitempty"`
	Filters      []model.Filter `json:"filters,omitempty"`
	GroupBy      string         `json:"group_by,omitempty"`
	Aggregations []Aggregation  `json:"aggregations,omitempty"`
	OrderBy      *OrderBy       `json:"order_by,omitempty"`
	Limit        int            `json:"limit,omitempty"`
}

// Row is one result record. Values are float64 for numbers, string for
// text, nil for missing.
type Row map[string]any

// Result is the query output. SQL is a cosmetic rendering of the
// executed config for display only; it is never parsed or run.
type Result struct {
	Results       []Row         `json:"results"`
	RowCount      int           `json:"row_count"`
	SQL           string        `json:"sql"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// Execute runs the query pipeline over the dataset.
func Execute(ds *model.Dataset, cfg Config) Result {
	start := time.Now()

	idx := model.ApplyFilters(ds, cfg.Filters)

	var rows []Row
	if cfg.GroupBy != "" {
		rows = group(ds, idx, cfg)
	} else {
		rows = project(ds, idx)
	}

	if len(cfg.Select) > 0 {
		rows = selectColumns(rows, cfg.Select)
	}
	if cfg.OrderBy != nil {
		orderRows(rows, *cfg.OrderBy)
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}

	return Result{
		Results:       rows,
		RowCount:      len(rows),
		SQL:           renderSQL(ds.Columns, cfg),
		ExecutionTime: time.Since(start),
	}
}

// group buckets rows by the stringified group value. Keys stay
// case-sensitive as given; the natural-language engine lowercases its
// grouping instead, which is that layer's contract.
func group(ds *model.Dataset, idx []int, cfg Config) []Row {
	aggs := cfg.Aggregations
	if len(aggs) == 0 {
		aggs = []Aggregation{{Column: cfg.GroupBy, Fn: "count"}}
	}

	buckets := make(map[string][]int)
	var order []string
	for _, i := range idx {
		key := ds.Value(i, cfg.GroupBy).String()
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		row := Row{cfg.GroupBy: key}
		for _, agg := range aggs {
			row[agg.Name()] = aggregate(ds, buckets[key], agg)
		}
		rows = append(rows, row)
	}
	return rows
}

// aggregate computes one aggregate over the bucket. Values failing
// numeric coercion are excluded from sum/avg/min/max, not zeroed.
func aggregate(ds *model.Dataset, idx []int, agg Aggregation) any {
	if agg.Fn == "count" {
		return float64(len(idx))
	}

	var values []float64
	for _, i := range idx {
		if v, ok := ds.Value(i, agg.Column).Coerce(); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	switch agg.Fn {
	case "sum":
		return sum(values)
	case "avg":
		return math.Round(sum(values)/float64(len(values))*100) / 100
	case "min":
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case "max":
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	default:
		return nil
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// project turns raw dataset rows into result rows.
func project(ds *model.Dataset, idx []int) []Row {
	rows := make([]Row, 0, len(idx))
	for _, i := range idx {
		row := make(Row, len(ds.Columns))
		for _, col := range ds.Columns {
			row[col] = cellValue(ds.Value(i, col))
		}
		rows = append(rows, row)
	}
	return rows
}

func cellValue(c model.Cell) any {
	if v, ok := c.Float(); ok {
		return v
	}
	if c.IsMissing() {
		return nil
	}
	return c.String()
}

func selectColumns(rows []Row, cols []string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		kept := make(Row, len(cols))
		for _, col := range cols {
			if v, ok := row[col]; ok {
				kept[col] = v
			}
		}
		out[i] = kept
	}
	return out
}

// orderRows sorts by the named key. Pairs of numbers compare
// numerically, everything else compares as strings; nil sorts last
// regardless of direction.
func orderRows(rows []Row, ob OrderBy) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][ob.Column], rows[j][ob.Column]
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		c := compareValues(a, b)
		if ob.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// renderSQL writes the config as display-only SQL text. Tests hold it
// to the clauses actually executed so it cannot silently diverge.
func renderSQL(headers []string, cfg Config) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	switch {
	case cfg.GroupBy != "":
		parts := []string{quoteIdent(cfg.GroupBy)}
		aggs := cfg.Aggregations
		if len(aggs) == 0 {
			aggs = []Aggregation{{Column: cfg.GroupBy, Fn: "count"}}
		}
		for _, agg := range aggs {
			parts = append(parts, fmt.Sprintf("%s(%s) AS %s",
				strings.ToUpper(agg.Fn), quoteIdent(agg.Column), agg.Name()))
		}
		b.WriteString(strings.Join(parts, ", "))
	case len(cfg.Select) > 0:
		quoted := make([]string, len(cfg.Select))
		for i, c := range cfg.Select {
			quoted[i] = quoteIdent(c)
		}
		b.WriteString(strings.Join(quoted, ", "))
	default:
		b.WriteString("*")
	}
	b.WriteString(" FROM data")

	if len(cfg.Filters) > 0 {
		conds := make([]string, len(cfg.Filters))
		for i, f := range cfg.Filters {
			conds[i] = renderCondition(f)
		}
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if cfg.GroupBy != "" {
		b.WriteString(" GROUP BY " + quoteIdent(cfg.GroupBy))
	}
	if cfg.OrderBy != nil {
		b.WriteString(" ORDER BY " + quoteIdent(cfg.OrderBy.Column))
		if cfg.OrderBy.Desc {
			b.WriteString(" DESC")
		}
	}
	if cfg.Limit > 0 {
		b.WriteString(fmt.Sprintf(" LIMIT %d", cfg.Limit))
	}
	return b.String()
}

func renderCondition(f model.Filter) string {
	col := quoteIdent(f.Column)
	switch f.Op {
	case model.OpEquals:
		return fmt.Sprintf("%s = '%s'", col, f.Value)
	case model.OpContains:
		return fmt.Sprintf("%s LIKE '%%%s%%'", col, f.Value)
	case model.OpGreater:
		return fmt.Sprintf("%s > %s", col, f.Value)
	case model.OpLess:
		return fmt.Sprintf("%s < %s", col, f.Value)
	case model.OpBetween:
		return fmt.Sprintf("%s BETWEEN %g AND %g", col, f.Low, f.High)
	case model.OpIn:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = "'" + v + "'"
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(quoted, ", "))
	case model.OpIsEmpty:
		return col + " IS NULL"
	case model.OpIsNotEmpty:
		return col + " IS NOT NULL"
	default:
		return "1 = 1"
	}
}

// quoteIdent wraps identifiers containing spaces in double quotes.
func quoteIdent(name string) string {
	if strings.ContainsAny(name, " \t") {
		return `"` + name + `"`
	}
	return name
}
