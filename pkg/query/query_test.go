package query

import (
	"strings"
	"testing"

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

func TestClassify(t *testing.T) {
	tests := []struct {
		question string
		want     Intent
	}{
		{"why is my data dirty?", IntentWhyRaw},
		{"what is the data quality?", IntentQualitySummary},
		{"show me the duplicates", IntentListDuplicates},
		{"how many duplicates are there?", IntentCountDuplicates},
		{"how many rows are there?", IntentCountRows},
		{"how many mike are there?", IntentCountName},
		{"top 5 customers", IntentTopValues},
		{"sales by category", IntentGroupSum},
		{"total revenue", IntentSum},
		{"what is the meaning of life", IntentUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.question); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.question, got, tt.want)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "why" outranks everything, even when later rules would also fire.
	if got := Classify("why are there so many duplicates?"); got != IntentWhyRaw {
		t.Errorf("Classify = %s, want WHY_RAW to win on priority", got)
	}
}

func TestCountDuplicatesAnswer(t *testing.T) {
	ds, cols := buildDS(t, "Customer Name,Revenue\nMike Smith,1200\nMike Smith,1200\nJohn Doe,25\n")
	a := New().Answer("how many duplicates?", ds, cols)

	if !strings.Contains(a.Text, "1 duplicate") {
		t.Errorf("Text = %q, want it to state exactly 1 duplicate", a.Text)
	}
	if a.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %s, want high", a.Confidence)
	}
}

func TestCountNameWholeTokenOnly(t *testing.T) {
	ds, cols := buildDS(t, "Customer Name,Revenue\nMike Smith,1200\nMikela Jones,300\nmike brown,50\n")
	a := New().Answer("how many mike are there?", ds, cols)

	if !strings.Contains(a.Text, "Found 2 rows") {
		t.Errorf("Text = %q, want 2 matches (Mikela is not a whole-token match)", a.Text)
	}
	if a.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %s, want high", a.Confidence)
	}
}

func TestGroupSumRanksDescending(t *testing.T) {
	ds, cols := buildDS(t, "Category,Revenue\nElectronics,100\nElectronics,200\nFurniture,50\n")
	a := New().Answer("sales by category", ds, cols)

	elec := strings.Index(a.Text, "Electronics: 300")
	furn := strings.Index(a.Text, "Furniture: 50")
	if elec < 0 || furn < 0 {
		t.Fatalf("Text = %q, want both group sums present", a.Text)
	}
	if elec > furn {
		t.Errorf("Text = %q, want Electronics (300) ranked before Furniture (50)", a.Text)
	}
}

func TestGroupSumReportsSkippedValues(t *testing.T) {
	ds, cols := buildDS(t, "Category,Revenue\nA,100\nA,oops\nB,50\n")
	a := New().Answer("revenue by category", ds, cols)

	if !strings.Contains(a.Text, "Skipped 1 non-numeric") {
		t.Errorf("Text = %q, want the skip count surfaced", a.Text)
	}
}

func TestGroupSumLowercasesKeys(t *testing.T) {
	ds, cols := buildDS(t, "Category,Revenue\nElectronics,100\nelectronics,200\n")
	a := New().Answer("revenue by category", ds, cols)

	if !strings.Contains(a.Text, "300") {
		t.Errorf("Text = %q, want case-insensitive grouping to merge both spellings", a.Text)
	}
}

func TestSumWithFilter(t *testing.T) {
	ds, cols := buildDS(t, "Category,Revenue\nElectronics,100\nElectronics,200\nFurniture,50\n")
	a := New().Answer("total revenue where category is electronics", ds, cols)

	if !strings.Contains(a.Text, "300") {
		t.Errorf("Text = %q, want the filtered total 300", a.Text)
	}

	joined := strings.Join(a.How, "\n")
	if !strings.Contains(joined, "filter:") {
		t.Errorf("How = %v, want the applied filter in the audit trail", a.How)
	}
	if !strings.Contains(joined, "rows considered: 2 of 3") {
		t.Errorf("How = %v, want the filtered row count recorded", a.How)
	}
}

func TestContainsFilter(t *testing.T) {
	ds, cols := buildDS(t, "Customer Name,Revenue\nMike Smith,1200\nMikela Jones,300\nJohn Doe,50\n")
	// The contains filter is substring matching, so "mike" also hits
	// "Mikela Jones"; only COUNT_NAME does whole-token matching.
	a := New().Answer("how many rows where customer name contains mike", ds, cols)

	if !strings.Contains(a.Text, "2 rows") {
		t.Errorf("Text = %q, want 2 rows after the contains filter", a.Text)
	}
}

func TestTopValues(t *testing.T) {
	ds, cols := buildDS(t, "Product,Qty\nWidget,1\nWidget,2\nGadget,3\nDoohickey,4\n")
	a := New().Answer("top 2 products", ds, cols)

	if !strings.Contains(a.Text, "Widget (2)") {
		t.Errorf("Text = %q, want Widget ranked with count 2", a.Text)
	}
	if strings.Count(a.Text, "(") != 2 {
		t.Errorf("Text = %q, want exactly 2 entries for top 2", a.Text)
	}
}

func TestUnknownSuggestsExamples(t *testing.T) {
	ds, cols := buildDS(t, "a,b\n1,2\n")
	a := New().Answer("what is the meaning of life", ds, cols)

	if a.Confidence != ConfidenceLow {
		t.Errorf("Confidence = %s, want low", a.Confidence)
	}
	if !strings.Contains(a.Text, "Try one of") {
		t.Errorf("Text = %q, want example phrasings suggested", a.Text)
	}
}

func TestUnresolvableMetricFallsBack(t *testing.T) {
	ds, cols := buildDS(t, "Name,Color\nMike,red\nJane,blue\n")
	a := New().Answer("total xyz", ds, cols)

	if a.Confidence != ConfidenceMedium {
		t.Errorf("Confidence = %s, want medium for an unresolvable metric", a.Confidence)
	}
	if a.Text == "" {
		t.Error("fallback answer must not be empty")
	}
}

func TestAnswerNeverEmptyTrail(t *testing.T) {
	ds, cols := buildDS(t, "Category,Revenue\nA,1\nB,2\n")
	questions := []string{
		"why is this dirty", "data quality?", "show duplicates",
		"how many duplicates", "how many rows", "how many bob",
		"top categories", "revenue by category", "total revenue", "gibberish",
	}

	for _, q := range questions {
		a := New().Answer(q, ds, cols)
		if len(a.How) == 0 {
			t.Errorf("Answer(%q) returned an empty audit trail", q)
		}
		if a.Text == "" {
			t.Errorf("Answer(%q) returned empty text", q)
		}
	}
}

func TestPlanFor(t *testing.T) {
	headers := []string{"Category", "Revenue", "Region"}
	p := New().PlanFor("sales by category where region is west", headers)

	if p.Intent != IntentGroupSum {
		t.Fatalf("Intent = %s", p.Intent)
	}
	if p.Metric != "Revenue" {
		t.Errorf("Metric = %q, want Revenue", p.Metric)
	}
	if p.GroupBy != "Category" {
		t.Errorf("GroupBy = %q, want Category", p.GroupBy)
	}
	if len(p.Filters) != 1 || p.Filters[0].Column != "Region" || p.Filters[0].Op != model.OpEquals {
		t.Errorf("Filters = %+v, want one equals filter on Region", p.Filters)
	}
	if p.Filters[0].Value != "west" {
		t.Errorf("filter value = %q, want west", p.Filters[0].Value)
	}
}

func TestResolveRoleExactBeforeSubstring(t *testing.T) {
	headers := []string{"Customer Notes", "Customer"}
	col, ok := ResolveRole(headers, "customer")
	if !ok || col != "Customer" {
		t.Errorf("ResolveRole = %q/%v, want the exact match over the substring one", col, ok)
	}
}

func TestResolveColumn(t *testing.T) {
	headers := []string{"Customer Name", "Order Date"}

	if col, ok := ResolveColumn(headers, "order date"); !ok || col != "Order Date" {
		t.Errorf("exact: got %q/%v", col, ok)
	}
	if col, ok := ResolveColumn(headers, "customer"); !ok || col != "Customer Name" {
		t.Errorf("substring: got %q/%v", col, ok)
	}
	if _, ok := ResolveColumn(headers, "banana"); ok {
		t.Error("unresolvable token should not match")
	}
}
