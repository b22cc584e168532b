package model

import (
	"math"
	"testing"
)

func TestCellVariants(t *testing.T) {
	cases := []struct {
		name    string
		cell    Cell
		kind    CellKind
		display string
	}{
		{"number", Number(42), KindNumber, "42"},
		{"fractional", Number(3.5), KindNumber, "3.5"},
		{"text", Text("hello"), KindText, "hello"},
		{"missing", Missing(), KindMissing, ""},
		{"nan collapses", Number(math.NaN()), KindMissing, ""},
		{"inf collapses", Number(math.Inf(1)), KindMissing, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.cell.Kind() != tc.kind {
				t.Errorf("kind = %v, want %v", tc.cell.Kind(), tc.kind)
			}
			if tc.cell.String() != tc.display {
				t.Errorf("String() = %q, want %q", tc.cell.String(), tc.display)
			}
		})
	}
}

func TestCellCoerce(t *testing.T) {
	if v, ok := Number(7).Coerce(); !ok || v != 7 {
		t.Errorf("Number(7).Coerce() = %v, %v", v, ok)
	}
	if v, ok := Text(" 12.5 ").Coerce(); !ok || v != 12.5 {
		t.Errorf("Text coerce = %v, %v, want 12.5", v, ok)
	}
	if _, ok := Text("abc").Coerce(); ok {
		t.Error("non-numeric text must not coerce")
	}
	if _, ok := Missing().Coerce(); ok {
		t.Error("missing must not coerce")
	}
}

func TestCellEqual(t *testing.T) {
	if !Number(1).Equal(Number(1)) || Number(1).Equal(Number(2)) {
		t.Error("number equality broken")
	}
	if Number(1).Equal(Text("1")) {
		t.Error("different kinds must not be equal even with the same display")
	}
	if !Missing().Equal(Missing()) {
		t.Error("missing cells are equal")
	}
}

func TestAppendNormalizesRowLength(t *testing.T) {
	d := NewDataset([]string{"a", "b", "c"})
	d.Append(Row{Number(1)})
	d.Append(Row{Number(1), Number(2), Number(3), Number(4)})

	for i := range d.Rows {
		if len(d.Rows[i]) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(d.Rows[i]))
		}
	}
	if !d.Value(0, "b").IsMissing() {
		t.Error("short row must be padded with missing cells")
	}
	if v, _ := d.Value(1, "c").Float(); v != 3 {
		t.Error("extra cells must be dropped, not shifted")
	}
}

func TestValueOutOfRange(t *testing.T) {
	d := NewDataset([]string{"a"})
	d.Append(Row{Number(1)})

	if !d.Value(5, "a").IsMissing() {
		t.Error("out-of-range row yields missing")
	}
	if !d.Value(0, "nope").IsMissing() {
		t.Error("unknown column yields missing")
	}
}

func TestCloneSharesNoStorage(t *testing.T) {
	d := NewDataset([]string{"a"})
	d.Append(Row{Number(1)})

	c := d.Clone()
	c.Rows[0][0] = Number(99)

	if v, _ := d.Value(0, "a").Float(); v != 1 {
		t.Error("mutating the clone must not touch the original")
	}
}

func TestSignatures(t *testing.T) {
	d := NewDataset([]string{"a", "b"})
	d.Append(Row{Text("x"), Number(1)})
	d.Append(Row{Text("x"), Number(1)})
	d.Append(Row{Text("y"), Number(1)})

	if d.Signature(0) != d.Signature(1) {
		t.Error("identical rows must share a signature")
	}
	if d.Signature(0) == d.Signature(2) {
		t.Error("different rows must not share a signature")
	}
	if got := d.DistinctSignatures(); got != 2 {
		t.Errorf("DistinctSignatures = %d, want 2", got)
	}
}

func TestFilterMatches(t *testing.T) {
	cases := []struct {
		name string
		f    Filter
		c    Cell
		want bool
	}{
		{"equals ignores case", Filter{Op: OpEquals, Value: "East"}, Text("east"), true},
		{"equals trims", Filter{Op: OpEquals, Value: " x "}, Text("x"), true},
		{"contains", Filter{Op: OpContains, Value: "ike"}, Text("Mike"), true},
		{"greater", Filter{Op: OpGreater, Value: "10"}, Number(11), true},
		{"greater fails closed", Filter{Op: OpGreater, Value: "10"}, Text("abc"), false},
		{"less", Filter{Op: OpLess, Value: "10"}, Number(9), true},
		{"between inclusive", Filter{Op: OpBetween, Low: 1, High: 5}, Number(5), true},
		{"in", Filter{Op: OpIn, Values: []string{"a", "b"}}, Text("B"), true},
		{"isEmpty on missing", Filter{Op: OpIsEmpty}, Missing(), true},
		{"isNotEmpty", Filter{Op: OpIsNotEmpty}, Text("x"), true},
		{"unknown op fails closed", Filter{Op: Operator("wat")}, Text("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(tc.c); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApplyFiltersIsConjunction(t *testing.T) {
	d := NewDataset([]string{"region", "rev"})
	d.Append(Row{Text("East"), Number(100)})
	d.Append(Row{Text("East"), Number(5)})
	d.Append(Row{Text("West"), Number(200)})

	idx := ApplyFilters(d, []Filter{
		{Column: "region", Op: OpEquals, Value: "east"},
		{Column: "rev", Op: OpGreater, Value: "50"},
	})
	if len(idx) != 1 || idx[0] != 0 {
		t.Errorf("idx = %v, want [0]", idx)
	}

	if got := ApplyFilters(d, nil); len(got) != 3 {
		t.Errorf("no filters must return every row, got %v", got)
	}
}
