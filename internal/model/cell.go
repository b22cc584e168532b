// Package model defines core data structures for AutoInsight.
package model

import (
	"math"
	"strconv"
	"strings"
)

// CellKind discriminates the variants of a Cell.
type CellKind uint8

const (
	// KindMissing marks an absent or empty value.
	KindMissing CellKind = iota
	// KindNumber marks a finite numeric value.
	KindNumber
	// KindText marks a string value (including canonicalized dates).
	KindText
)

// String returns the kind name.
func (k CellKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Cell is a tagged variant holding a single table value.
// Consumers switch on Kind() instead of probing dynamic types.
type Cell struct {
	kind CellKind
	num  float64
	text string
}

// Number creates a numeric cell. Non-finite inputs collapse to Missing.
func Number(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Cell{kind: KindMissing}
	}
	return Cell{kind: KindNumber, num: v}
}

// Text creates a text cell.
func Text(s string) Cell {
	return Cell{kind: KindText, text: s}
}

// Missing creates an absent cell.
func Missing() Cell {
	return Cell{kind: KindMissing}
}

// Kind returns the cell's variant tag.
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing
}

// Float returns the numeric value and whether the cell is numeric.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Coerce returns a numeric interpretation of the cell when one exists:
// the value itself for number cells, a parse attempt for text cells.
func (c Cell) Coerce() (float64, bool) {
	switch c.kind {
	case KindNumber:
		return c.num, true
	case KindText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// String returns the display form of the cell. Missing renders empty;
// numbers render without a trailing ".0" when integral.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		if c.num == math.Trunc(c.num) && math.Abs(c.num) < 1e15 {
			return strconv.FormatInt(int64(c.num), 10)
		}
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return c.text
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same variant and value.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.num == o.num
	case KindText:
		return c.text == o.text
	default:
		return true
	}
}
