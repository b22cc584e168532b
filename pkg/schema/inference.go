// Package schema provides column type inference over untyped string
// cells, plus per-value validity checks against the inferred types.
package schema

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/parser"
)

// Type is an inferred column type.
type Type string

const (
	TypeNumber Type = "number"
	TypeDate   Type = "date"
	TypeString Type = "string"
)

// Column is one inferred schema entry. MissingCount covers the whole
// column, not just the inference sample. InvalidCount is only
// meaningful relative to the inferred type; string columns have zero
// invalid entries by construction.
type Column struct {
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	MissingCount int    `json:"missing_count"`
	InvalidCount int    `json:"invalid_count"`
	OutlierCount int    `json:"outlier_count,omitempty"`
}

// Options controls inference sampling and thresholds.
type Options struct {
	// SampleSize caps how many non-empty values vote on the type.
	SampleSize int
	// NumberRatio is the minimum fraction of samples parsing as a
	// number for the column to be numeric.
	NumberRatio float64
	// DateRatio is the minimum fraction parsing as a date.
	DateRatio float64
	// DateGuardRatio is the maximum numeric fraction still allowing a
	// date verdict. Numeric columns take priority because numeric
	// strings often also parse as epoch-like dates.
	DateGuardRatio float64
}

// DefaultOptions returns the standard inference thresholds.
func DefaultOptions() Options {
	return Options{
		SampleSize:     40,
		NumberRatio:    0.85,
		DateRatio:      0.85,
		DateGuardRatio: 0.5,
	}
}

// OptionsFrom builds inference options from loaded configuration.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		SampleSize:     cfg.Inference.SampleSize,
		NumberRatio:    cfg.Inference.NumberRatio,
		DateRatio:      cfg.Inference.DateRatio,
		DateGuardRatio: cfg.Inference.DateGuardRatio,
	}
}

// emptyTokens are the case-insensitive spellings treated as absent.
var emptyTokens = map[string]struct{}{
	"": {}, "null": {}, "nan": {}, "none": {},
}

// IsEmpty reports whether a raw value counts as missing.
func IsEmpty(value string) bool {
	_, ok := emptyTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// ParseNumber attempts numeric conversion after stripping thousands
// separators and currency symbols. Success requires a finite result.
func ParseNumber(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	// ParseFloat accepts spellings like "inf" and "NaN"; a non-finite
	// result is not a number for typing purposes.
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// ParseDate attempts a generic date parse. Success requires a valid
// calendar date.
func ParseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanonicalDate formats a date in the canonical YYYY-MM-DD form.
func CanonicalDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// IsValid reports whether a non-empty value parses against a column
// type. String columns accept everything.
func IsValid(value string, t Type) bool {
	switch t {
	case TypeNumber:
		_, ok := ParseNumber(value)
		return ok
	case TypeDate:
		_, ok := ParseDate(value)
		return ok
	default:
		return true
	}
}

// InferColumn classifies one column from its raw values and counts
// missing and invalid entries over the whole column.
func InferColumn(name string, values []string, opts Options) Column {
	if opts.SampleSize <= 0 {
		opts = DefaultOptions()
	}

	col := Column{Name: name, Type: TypeString}

	// Sample up to SampleSize non-empty values for the type vote.
	var sampled, numHits, dateHits int
	for _, v := range values {
		if IsEmpty(v) {
			col.MissingCount++
			continue
		}
		if sampled >= opts.SampleSize {
			continue
		}
		sampled++
		if _, ok := ParseNumber(v); ok {
			numHits++
		}
		if _, ok := ParseDate(v); ok {
			dateHits++
		}
	}

	if sampled > 0 {
		numRatio := float64(numHits) / float64(sampled)
		dateRatio := float64(dateHits) / float64(sampled)
		switch {
		case numRatio >= opts.NumberRatio:
			col.Type = TypeNumber
		case dateRatio >= opts.DateRatio && numRatio < opts.DateGuardRatio:
			col.Type = TypeDate
		}
	}

	// Invalid entries are counted over the whole column against the
	// final inferred type.
	if col.Type != TypeString {
		for _, v := range values {
			if IsEmpty(v) {
				continue
			}
			if !IsValid(v, col.Type) {
				col.InvalidCount++
			}
		}
	}

	return col
}

// InferTable infers every column of a parsed table. Ragged rows read
// as empty beyond their own field count.
func InferTable(table *parser.Table, opts Options) []Column {
	cols := make([]Column, len(table.Headers))
	for i, name := range table.Headers {
		values := make([]string, len(table.Records))
		for r, rec := range table.Records {
			if i < len(rec) {
				values[r] = rec[i]
			}
		}
		cols[i] = InferColumn(name, values, opts)
	}
	return cols
}

// BuildDataset converts a raw table into a typed dataset under the
// inferred schema. Missing values become Missing cells; values that
// fail their column's type stay as text (invalid is data, not an
// error); dates are canonicalized. Short rows are padded and long rows
// truncated to the header count.
func BuildDataset(table *parser.Table, cols []Column) *model.Dataset {
	ds := model.NewDataset(table.Headers)

	for _, rec := range table.Records {
		row := make(model.Row, 0, len(cols))
		for i, col := range cols {
			var raw string
			if i < len(rec) {
				raw = rec[i]
			}
			row = append(row, buildCell(raw, col.Type))
		}
		ds.Append(row)
	}
	return ds
}

func buildCell(raw string, t Type) model.Cell {
	if IsEmpty(raw) {
		return model.Missing()
	}
	switch t {
	case TypeNumber:
		if v, ok := ParseNumber(raw); ok {
			return model.Number(v)
		}
	case TypeDate:
		if d, ok := ParseDate(raw); ok {
			return model.Text(CanonicalDate(d))
		}
	}
	return model.Text(strings.TrimSpace(raw))
}
