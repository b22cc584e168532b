package querybuilder

import (
	"strings"
	"testing"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/parser"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
)

func buildDS(t *testing.T, csv string) *model.Dataset {
	t.Helper()
	table := parser.Parse([]byte(csv))
	cols := schema.InferTable(table, schema.DefaultOptions())
	return schema.BuildDataset(table, cols)
}

const salesCSV = "Category,Revenue,Region\n" +
	"Electronics,100,East\n" +
	"Electronics,200,West\n" +
	"Furniture,50,East\n" +
	"Toys,oops,West\n"

func TestExecuteFilterOnly(t *testing.T) {
	ds := buildDS(t, salesCSV)
	res := Execute(ds, Config{
		Filters: []model.Filter{{Column: "Region", Op: model.OpEquals, Value: "East"}},
	})

	if res.RowCount != 2 {
		t.Fatalf("RowCount = %d, want 2", res.RowCount)
	}
	if res.Results[0]["Category"] != "Electronics" || res.Results[1]["Category"] != "Furniture" {
		t.Errorf("Results = %v", res.Results)
	}
}

func TestExecuteGroupSum(t *testing.T) {
	ds := buildDS(t, salesCSV)
	res := Execute(ds, Config{
		GroupBy:      "Category",
		Aggregations: []Aggregation{{Column: "Revenue", Fn: "sum"}},
		OrderBy:      &OrderBy{Column: "revenue_sum", Desc: true},
	})

	if res.RowCount != 3 {
		t.Fatalf("RowCount = %d, want 3 groups", res.RowCount)
	}
	if res.Results[0]["Category"] != "Electronics" || res.Results[0]["revenue_sum"] != 300.0 {
		t.Errorf("top group = %v, want Electronics 300", res.Results[0])
	}
	// "oops" fails coercion, so the Toys bucket has no aggregate input.
	last := res.Results[2]
	if last["Category"] != "Toys" || last["revenue_sum"] != nil {
		t.Errorf("last group = %v, want Toys with nil sum", last)
	}
}

func TestExecuteAvgRoundsToTwoDecimals(t *testing.T) {
	all := buildDS(t, "g,v\na,1\na,2\na,4\n")
	out := Execute(all, Config{
		GroupBy:      "g",
		Aggregations: []Aggregation{{Column: "v", Fn: "avg"}},
	})
	if out.Results[0]["v_avg"] != 2.33 {
		t.Errorf("v_avg = %v, want 2.33", out.Results[0]["v_avg"])
	}
}

func TestGroupKeysAreCaseSensitive(t *testing.T) {
	ds := buildDS(t, "Category,Revenue\nElectronics,100\nelectronics,200\n")
	res := Execute(ds, Config{
		GroupBy:      "Category",
		Aggregations: []Aggregation{{Column: "Revenue", Fn: "sum"}},
	})

	if res.RowCount != 2 {
		t.Errorf("RowCount = %d, want distinct buckets for Electronics and electronics", res.RowCount)
	}
}

func TestPipelineOrderLimitAfterSort(t *testing.T) {
	ds := buildDS(t, "name,score\na,1\nb,5\nc,3\n")
	res := Execute(ds, Config{
		OrderBy: &OrderBy{Column: "score", Desc: true},
		Limit:   1,
	})

	if res.RowCount != 1 || res.Results[0]["name"] != "b" {
		t.Errorf("Results = %v, want only the highest score row", res.Results)
	}
}

func TestSelectProjection(t *testing.T) {
	ds := buildDS(t, salesCSV)
	res := Execute(ds, Config{Select: []string{"Category"}})

	for _, row := range res.Results {
		if len(row) != 1 {
			t.Fatalf("row = %v, want only Category", row)
		}
		if _, ok := row["Category"]; !ok {
			t.Fatalf("row = %v, missing Category", row)
		}
	}
}

func TestMinMaxCount(t *testing.T) {
	ds := buildDS(t, "g,v\na,5\na,1\na,9\n")
	res := Execute(ds, Config{
		GroupBy: "g",
		Aggregations: []Aggregation{
			{Column: "v", Fn: "min"},
			{Column: "v", Fn: "max"},
			{Column: "v", Fn: "count"},
		},
	})

	row := res.Results[0]
	if row["v_min"] != 1.0 || row["v_max"] != 9.0 || row["v_count"] != 3.0 {
		t.Errorf("row = %v, want min 1 max 9 count 3", row)
	}
}

func TestSQLMatchesExecutedConfig(t *testing.T) {
	ds := buildDS(t, salesCSV)
	cfg := Config{
		Filters:      []model.Filter{{Column: "Region", Op: model.OpEquals, Value: "East"}},
		GroupBy:      "Category",
		Aggregations: []Aggregation{{Column: "Revenue", Fn: "sum"}},
		OrderBy:      &OrderBy{Column: "revenue_sum", Desc: true},
		Limit:        10,
	}
	res := Execute(ds, cfg)

	// The SQL is cosmetic, but its clauses must mirror what actually
	// ran: same filter, same group key, same sort key, same limit.
	wantParts := []string{
		"WHERE Region = 'East'",
		"GROUP BY Category",
		"SUM(Revenue) AS revenue_sum",
		"ORDER BY revenue_sum DESC",
		"LIMIT 10",
	}
	for _, part := range wantParts {
		if !strings.Contains(res.SQL, part) {
			t.Errorf("SQL = %q, missing %q", res.SQL, part)
		}
	}
}

func TestSQLQuotesSpacedIdentifiers(t *testing.T) {
	ds := buildDS(t, "Customer Name,Revenue\nMike,1\n")
	res := Execute(ds, Config{Select: []string{"Customer Name"}})

	if !strings.Contains(res.SQL, `"Customer Name"`) {
		t.Errorf("SQL = %q, want the spaced identifier quoted", res.SQL)
	}
}

func TestExecuteEmptyConfigReturnsAllRows(t *testing.T) {
	ds := buildDS(t, salesCSV)
	res := Execute(ds, Config{})

	if res.RowCount != 4 {
		t.Errorf("RowCount = %d, want all 4 rows", res.RowCount)
	}
	if res.SQL != "SELECT * FROM data" {
		t.Errorf("SQL = %q", res.SQL)
	}
}
