package model

import "strings"

// signatureSep separates column values inside a row signature. The unit
// separator control character never survives CSV parsing, so collisions
// with real data are not a practical concern.
const signatureSep = "\x1f"

// Row holds one table row, cells in dataset column order.
type Row []Cell

// Dataset is an in-memory table: an ordered column list plus rows whose
// cells follow that order. Column order defines display and CSV
// round-trip order and is identical across all rows.
type Dataset struct {
	Columns []string
	Rows    []Row

	index map[string]int
}

// NewDataset creates an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	d := &Dataset{Columns: append([]string(nil), columns...)}
	d.reindex()
	return d
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		d.index[c] = i
	}
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (d *Dataset) ColumnIndex(name string) int {
	if d.index == nil {
		d.reindex()
	}
	if i, ok := d.index[name]; ok {
		return i
	}
	return -1
}

// Append adds a row. Short rows are padded with missing cells and extra
// cells beyond the column count are dropped, so every stored row has
// exactly len(Columns) cells.
func (d *Dataset) Append(row Row) {
	n := len(d.Columns)
	if len(row) > n {
		row = row[:n]
	}
	for len(row) < n {
		row = append(row, Missing())
	}
	d.Rows = append(d.Rows, row)
}

// Value returns the cell at (row, column name). Missing column or
// out-of-range row yields a missing cell.
func (d *Dataset) Value(row int, column string) Cell {
	i := d.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(d.Rows) {
		return Missing()
	}
	return d.Rows[row][i]
}

// Column returns all cells of one column in row order.
func (d *Dataset) Column(name string) []Cell {
	i := d.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	out := make([]Cell, len(d.Rows))
	for r, row := range d.Rows {
		out[r] = row[i]
	}
	return out
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int {
	return len(d.Rows)
}

// NumColumns returns the column count.
func (d *Dataset) NumColumns() int {
	return len(d.Columns)
}

// Clone returns a deep copy sharing no row storage with the original.
// Transformations operate on clones so before/after comparison stays
// possible.
func (d *Dataset) Clone() *Dataset {
	c := NewDataset(d.Columns)
	c.Rows = make([]Row, len(d.Rows))
	for i, row := range d.Rows {
		c.Rows[i] = append(Row(nil), row...)
	}
	return c
}

// Signature returns the duplicate-detection key for a row: every cell's
// display value joined in column order. Two rows are duplicates iff
// their signatures are equal.
func (d *Dataset) Signature(row int) string {
	if row < 0 || row >= len(d.Rows) {
		return ""
	}
	parts := make([]string, len(d.Rows[row]))
	for i, c := range d.Rows[row] {
		parts[i] = c.String()
	}
	return strings.Join(parts, signatureSep)
}

// DistinctSignatures returns the number of distinct row signatures.
func (d *Dataset) DistinctSignatures() int {
	seen := make(map[string]struct{}, len(d.Rows))
	for i := range d.Rows {
		seen[d.Signature(i)] = struct{}{}
	}
	return len(seen)
}
