// Package clean repairs datasets with three composable passes:
// filling missing cells, coercing invalid cells, and removing
// duplicate rows. Passes never fail on bad data; every cell comes out
// holding some valid value. Each run produces a fresh dataset and a
// freshly recomputed profile so summary and data cannot drift apart.
package clean

import (
	"time"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/errors"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
)

// Mode selects which passes run.
type Mode string

const (
	// ModeAuto runs all passes: missing, then invalid, then duplicates.
	ModeAuto Mode = "auto"
	// ModeMissing fills missing cells only.
	ModeMissing Mode = "missing"
	// ModeInvalid coerces invalid cells only.
	ModeInvalid Mode = "invalid"
)

// Placeholder substituted for missing string cells.
const unknownText = "Unknown"

// Result is the outcome of a cleaning run. Summary is recomputed from
// the cleaned rows, never carried over from before the run.
type Result struct {
	Dataset           *model.Dataset  `json:"-"`
	Summary           profile.Summary `json:"summary"`
	MissingFilled     int             `json:"missing_filled"`
	InvalidCoerced    int             `json:"invalid_coerced"`
	DuplicatesRemoved int             `json:"duplicates_removed"`
}

// Cleaner applies cleaning passes. The clock is injectable so date
// placeholders are deterministic under test.
type Cleaner struct {
	profiler *profile.Profiler
	now      func() time.Time
}

// New returns a cleaner with default settings.
func New() *Cleaner {
	return &Cleaner{profiler: profile.New(), now: time.Now}
}

// FromConfig builds a cleaner from loaded configuration.
func FromConfig(cfg *config.Config) *Cleaner {
	return &Cleaner{profiler: profile.FromConfig(cfg), now: time.Now}
}

// Clean runs the passes selected by mode over a copy of the dataset
// and re-profiles the result.
func (c *Cleaner) Clean(ds *model.Dataset, cols []schema.Column, mode Mode) (Result, error) {
	res := Result{Dataset: ds.Clone()}

	switch mode {
	case ModeAuto:
		res.MissingFilled = c.fillMissing(res.Dataset, cols)
		res.InvalidCoerced = c.coerceInvalid(res.Dataset, cols)
		res.Dataset, res.DuplicatesRemoved = dropDuplicates(res.Dataset)
	case ModeMissing:
		res.MissingFilled = c.fillMissing(res.Dataset, cols)
	case ModeInvalid:
		res.InvalidCoerced = c.coerceInvalid(res.Dataset, cols)
	default:
		return Result{}, errors.New(errors.CodeTransformFailed,
			"unknown cleaning mode "+string(mode)+", expected auto, missing or invalid")
	}

	res.Summary = c.profiler.Summarize(res.Dataset, cols)
	return res, nil
}

// fillMissing substitutes a type-appropriate placeholder for every
// missing cell: zero for numbers, today's date for dates, "Unknown"
// for strings. This is simple substitution, not statistical
// imputation.
func (c *Cleaner) fillMissing(ds *model.Dataset, cols []schema.Column) int {
	filled := 0
	today := schema.CanonicalDate(c.now())

	for _, col := range cols {
		j := ds.ColumnIndex(col.Name)
		if j < 0 {
			continue
		}
		for i := range ds.Rows {
			if !ds.Rows[i][j].IsMissing() {
				continue
			}
			switch col.Type {
			case schema.TypeNumber:
				ds.Rows[i][j] = model.Number(0)
			case schema.TypeDate:
				ds.Rows[i][j] = model.Text(today)
			default:
				ds.Rows[i][j] = model.Text(unknownText)
			}
			filled++
		}
	}
	return filled
}

// coerceInvalid forces every non-missing cell that fails its column
// type into the nearest valid representation. Numbers that cannot be
// parsed become zero; dates that cannot be parsed become today.
func (c *Cleaner) coerceInvalid(ds *model.Dataset, cols []schema.Column) int {
	coerced := 0
	today := schema.CanonicalDate(c.now())

	for _, col := range cols {
		j := ds.ColumnIndex(col.Name)
		if j < 0 {
			continue
		}
		for i := range ds.Rows {
			cell := ds.Rows[i][j]
			if cell.IsMissing() || cellValid(cell, col.Type) {
				continue
			}
			switch col.Type {
			case schema.TypeNumber:
				if v, ok := schema.ParseNumber(cell.String()); ok {
					ds.Rows[i][j] = model.Number(v)
				} else {
					ds.Rows[i][j] = model.Number(0)
				}
			case schema.TypeDate:
				if d, ok := schema.ParseDate(cell.String()); ok {
					ds.Rows[i][j] = model.Text(schema.CanonicalDate(d))
				} else {
					ds.Rows[i][j] = model.Text(today)
				}
			}
			coerced++
		}
	}
	return coerced
}

func cellValid(c model.Cell, t schema.Type) bool {
	switch t {
	case schema.TypeNumber:
		_, ok := c.Float()
		return ok
	case schema.TypeDate:
		_, ok := schema.ParseDate(c.String())
		return ok
	default:
		return true
	}
}

// dropDuplicates rebuilds the row set keeping only the first
// occurrence of each row signature, in original order.
func dropDuplicates(ds *model.Dataset) (*model.Dataset, int) {
	out := model.NewDataset(ds.Columns)
	seen := make(map[string]bool, len(ds.Rows))
	removed := 0

	for i := range ds.Rows {
		sig := ds.Signature(i)
		if seen[sig] {
			removed++
			continue
		}
		seen[sig] = true
		row := make(model.Row, len(ds.Rows[i]))
		copy(row, ds.Rows[i])
		out.Append(row)
	}
	return out, removed
}
