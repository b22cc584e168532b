package clean

import (
	"testing"
	"time"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/parser"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
)

func buildDS(t *testing.T, csv string) (*model.Dataset, []schema.Column) {
	t.Helper()
	table := parser.Parse([]byte(csv))
	cols := schema.InferTable(table, schema.DefaultOptions())
	return schema.BuildDataset(table, cols), cols
}

func fixedCleaner() *Cleaner {
	c := New()
	c.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return c
}

const dirtyCSV = "Name,Revenue,Signup\n" +
	"Mike,100,2024-01-01\n" +
	",200,2024-01-02\n" +
	"Jane,oops,notadate\n" +
	"Mike,100,2024-01-01\n" +
	"Bob,,2024-01-04\n" +
	"Amy,50,2024-01-05\n" +
	"Tom,75,2024-01-06\n" +
	"Kim,80,2024-01-07\n"

func TestCleanTypes(t *testing.T) {
	_, cols := buildDS(t, dirtyCSV)
	types := map[string]schema.Type{}
	for _, c := range cols {
		types[c.Name] = c.Type
	}
	if types["Name"] != schema.TypeString || types["Revenue"] != schema.TypeNumber || types["Signup"] != schema.TypeDate {
		t.Fatalf("inferred types = %v", types)
	}
}

func TestCleanAuto(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	res, err := fixedCleaner().Clean(ds, cols, ModeAuto)
	if err != nil {
		t.Fatal(err)
	}

	if res.MissingFilled != 2 {
		t.Errorf("MissingFilled = %d, want 2 (blank name, blank revenue)", res.MissingFilled)
	}
	if res.InvalidCoerced != 2 {
		t.Errorf("InvalidCoerced = %d, want 2 (oops, notadate)", res.InvalidCoerced)
	}
	if res.DuplicatesRemoved != 1 {
		t.Errorf("DuplicatesRemoved = %d, want 1", res.DuplicatesRemoved)
	}

	out := res.Dataset
	if out.NumRows() != 7 {
		t.Fatalf("rows = %d, want 7", out.NumRows())
	}
	if got := out.Value(1, "Name").String(); got != "Unknown" {
		t.Errorf("blank name = %q, want Unknown", got)
	}
	if v, ok := out.Value(2, "Revenue").Float(); !ok || v != 0 {
		t.Errorf("coerced revenue = %v/%v, want 0", v, ok)
	}
	if got := out.Value(2, "Signup").String(); got != "2026-08-30" {
		t.Errorf("coerced date = %q, want today's canonical form", got)
	}
	// The removed duplicate sat above Bob, so his filled revenue is row 3.
	if v, ok := out.Value(3, "Revenue").Float(); !ok || v != 0 {
		t.Errorf("filled revenue = %v/%v, want 0", v, ok)
	}
}

func TestCleanReprofilesResult(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	res, err := fixedCleaner().Clean(ds, cols, ModeAuto)
	if err != nil {
		t.Fatal(err)
	}

	if res.Summary.RowCount != 7 {
		t.Errorf("Summary.RowCount = %d, want 7", res.Summary.RowCount)
	}
	if res.Summary.DuplicateRowCount != 0 {
		t.Errorf("Summary.DuplicateRowCount = %d, want 0 after dedup", res.Summary.DuplicateRowCount)
	}
	for _, col := range res.Summary.Columns {
		if col.MissingCount != 0 {
			t.Errorf("column %s still reports %d missing after clean", col.Name, col.MissingCount)
		}
		if col.InvalidCount != 0 {
			t.Errorf("column %s still reports %d invalid after clean", col.Name, col.InvalidCount)
		}
	}
}

func TestCleanMissingModeKeepsDuplicates(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	res, err := fixedCleaner().Clean(ds, cols, ModeMissing)
	if err != nil {
		t.Fatal(err)
	}

	if res.MissingFilled != 2 || res.InvalidCoerced != 0 || res.DuplicatesRemoved != 0 {
		t.Errorf("counts = %d/%d/%d, want only the missing pass to run",
			res.MissingFilled, res.InvalidCoerced, res.DuplicatesRemoved)
	}
	if res.Dataset.NumRows() != 8 {
		t.Errorf("rows = %d, want all 8 kept", res.Dataset.NumRows())
	}
	if res.Summary.DuplicateRowCount != 1 {
		t.Errorf("Summary.DuplicateRowCount = %d, want 1", res.Summary.DuplicateRowCount)
	}
}

func TestCleanInvalidModeOnly(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	res, err := fixedCleaner().Clean(ds, cols, ModeInvalid)
	if err != nil {
		t.Fatal(err)
	}

	if res.InvalidCoerced != 2 || res.MissingFilled != 0 {
		t.Errorf("counts = %d/%d, want only the invalid pass to run",
			res.InvalidCoerced, res.MissingFilled)
	}
	if !res.Dataset.Value(1, "Name").IsMissing() {
		t.Error("missing cells must survive invalid-only mode")
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	if _, err := fixedCleaner().Clean(ds, cols, ModeAuto); err != nil {
		t.Fatal(err)
	}

	if !ds.Value(1, "Name").IsMissing() {
		t.Error("input dataset was mutated")
	}
	if ds.NumRows() != 8 {
		t.Errorf("input rows = %d, want untouched 8", ds.NumRows())
	}
}

func TestCleanUnknownMode(t *testing.T) {
	ds, cols := buildDS(t, dirtyCSV)
	if _, err := New().Clean(ds, cols, Mode("frobnicate")); err == nil {
		t.Fatal("unknown mode must error")
	}
}

func TestDropDuplicatesKeepsFirstInOrder(t *testing.T) {
	ds, _ := buildDS(t, "a,b\n1,x\n2,y\n1,x\n3,z\n1,x\n")
	out, removed := dropDuplicates(ds)

	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	want := []string{"1", "2", "3"}
	for i, w := range want {
		if got := out.Value(i, "a").String(); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
}
