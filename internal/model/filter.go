package model

import "strings"

// Operator identifies a filter comparison.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpContains   Operator = "contains"
	OpGreater    Operator = "greater"
	OpLess       Operator = "less"
	OpBetween    Operator = "between"
	OpIn         Operator = "in"
	OpIsEmpty    Operator = "isEmpty"
	OpIsNotEmpty Operator = "isNotEmpty"
)

// Filter is a single predicate over one column. Value's shape depends on
// the operator: scalar for equals/contains/greater/less, Low/High for
// between, Values for in, nothing for the emptiness checks.
type Filter struct {
	Column string
	Op     Operator
	Value  string
	Low    float64
	High   float64
	Values []string
}

// Matches evaluates the filter against a cell. Unknown operators and
// non-numeric cells under numeric comparisons fail closed (no match)
// rather than erroring; invalidity is data, not an exception.
func (f Filter) Matches(c Cell) bool {
	switch f.Op {
	case OpEquals:
		return strings.EqualFold(strings.TrimSpace(c.String()), strings.TrimSpace(f.Value))
	case OpContains:
		return strings.Contains(strings.ToLower(c.String()), strings.ToLower(f.Value))
	case OpGreater:
		v, ok := c.Coerce()
		if !ok {
			return false
		}
		t, ok := Text(f.Value).Coerce()
		return ok && v > t
	case OpLess:
		v, ok := c.Coerce()
		if !ok {
			return false
		}
		t, ok := Text(f.Value).Coerce()
		return ok && v < t
	case OpBetween:
		v, ok := c.Coerce()
		return ok && v >= f.Low && v <= f.High
	case OpIn:
		for _, want := range f.Values {
			if strings.EqualFold(strings.TrimSpace(c.String()), strings.TrimSpace(want)) {
				return true
			}
		}
		return false
	case OpIsEmpty:
		return c.IsMissing() || strings.TrimSpace(c.String()) == ""
	case OpIsNotEmpty:
		return !c.IsMissing() && strings.TrimSpace(c.String()) != ""
	default:
		return false
	}
}

// ApplyFilters returns the indexes of rows matching every filter (AND).
// Filters naming unknown columns match nothing for that predicate.
func ApplyFilters(d *Dataset, filters []Filter) []int {
	out := make([]int, 0, len(d.Rows))
	for i := range d.Rows {
		keep := true
		for _, f := range filters {
			if !f.Matches(d.Value(i, f.Column)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, i)
		}
	}
	return out
}
