// Package query answers natural-language questions about a dataset.
// Classification is a keyword decision table, not NLP: the closed
// intent set plus the synonym dictionary in resolve.go make behavior
// predictable and testable. Every answer carries an explainability
// trail recording what was matched, filtered and counted.
package query

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Sumee7/project1autoinsight/internal/model"
	"github.com/Sumee7/project1autoinsight/pkg/config"
	"github.com/Sumee7/project1autoinsight/pkg/profile"
	"github.com/Sumee7/project1autoinsight/pkg/schema"
)

// Confidence grades how sure the engine is about an answer.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Answer is the engine's response. How is the audit trail: filters
// applied, columns resolved, rows considered. It is never empty.
type Answer struct {
	Text       string   `json:"text"`
	Confidence string   `json:"confidence"`
	How        []string `json:"how"`
}

// Plan is the resolved form of a question: intent, the columns it was
// resolved against, and the filters to apply. Built fresh per call,
// consumed once by the executor, then discarded. Empty column fields
// mean resolution failed; the executor answers with a suggestion
// instead of guessing.
type Plan struct {
	Intent    Intent
	NameToken string
	Column    string
	Metric    string
	GroupBy   string
	TopN      int
	Filters   []model.Filter
	Notes     []string
}

// Engine answers questions. It holds no per-question state; every call
// re-derives everything from the dataset it is handed.
type Engine struct {
	TopN     int
	profiler *profile.Profiler
}

// New returns an engine with default settings.
func New() *Engine {
	return &Engine{TopN: 5, profiler: profile.New()}
}

// FromConfig builds an engine from loaded configuration.
func FromConfig(cfg *config.Config) *Engine {
	return &Engine{TopN: cfg.Query.TopN, profiler: profile.FromConfig(cfg)}
}

var topNPattern = regexp.MustCompile(`top (\d+)`)

// PlanFor classifies a question and resolves every column it needs
// against the given headers.
func (e *Engine) PlanFor(question string, headers []string) Plan {
	q := normalize(question)
	p := Plan{Intent: Classify(q), TopN: e.TopN}

	if m := topNPattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			p.TopN = n
		}
	}
	p.Filters, p.Notes = parseFilters(q, headers)

	q = stripWhere(q)
	switch p.Intent {
	case IntentCountName:
		p.NameToken, _ = countNameToken(q)
		p.Column, _ = ResolveRole(headers, "customer")
	case IntentTopValues:
		p.Column, _ = pickValueColumn(q, headers)
	case IntentGroupSum:
		p.Metric, _ = resolveMetric(q, headers)
		p.GroupBy, _ = ResolveColumn(headers, afterBy(q))
	case IntentSum:
		p.Metric, _ = resolveMetric(q, headers)
	}
	return p
}

// Answer plans the question, applies its filters and runs the
// intent-specific computation over the surviving rows. It never
// returns an error: unanswerable questions produce a low-confidence
// suggestion instead.
func (e *Engine) Answer(question string, ds *model.Dataset, cols []schema.Column) Answer {
	plan := e.PlanFor(question, ds.Columns)

	how := []string{fmt.Sprintf("intent: %s", plan.Intent)}
	if len(plan.Notes) > 0 {
		how = append(how, plan.Notes...)
	} else {
		how = append(how, "no filters")
	}

	view := ds
	if len(plan.Filters) > 0 {
		view = viewOf(ds, model.ApplyFilters(ds, plan.Filters))
	}
	how = append(how, fmt.Sprintf("rows considered: %d of %d", view.NumRows(), ds.NumRows()))

	text, conf, extra := e.execute(plan, view, cols)
	return Answer{Text: text, Confidence: conf, How: append(how, extra...)}
}

func (e *Engine) execute(p Plan, view *model.Dataset, cols []schema.Column) (string, string, []string) {
	switch p.Intent {
	case IntentWhyRaw:
		return e.whyRaw(view, cols)
	case IntentQualitySummary:
		return e.qualitySummary(view)
	case IntentListDuplicates:
		return e.listDuplicates(view, p.TopN)
	case IntentCountDuplicates:
		n := profile.DuplicateRows(view)
		return fmt.Sprintf("There are %d duplicate rows.", n), ConfidenceHigh, nil
	case IntentCountRows:
		return fmt.Sprintf("The dataset has %d rows.", view.NumRows()), ConfidenceHigh, nil
	case IntentCountName:
		return countName(p, view)
	case IntentTopValues:
		return topValues(p, view)
	case IntentGroupSum:
		return groupSum(p, view)
	case IntentSum:
		return sumMetric(p, view)
	default:
		return unknownText(), ConfidenceLow, nil
	}
}

func (e *Engine) whyRaw(ds *model.Dataset, cols []schema.Column) (string, string, []string) {
	s := e.profiler.Summarize(ds, cols)
	issues := profile.DeriveIssues(s)

	var causes []string
	if n := len(issues.MissingValues); n > 0 {
		causes = append(causes, fmt.Sprintf("%d columns have missing values", n))
	}
	if n := len(issues.InvalidTypes); n > 0 {
		causes = append(causes, fmt.Sprintf("%d columns contain values that do not match their type", n))
	}
	if issues.Duplicates > 0 {
		causes = append(causes, fmt.Sprintf("%d rows are exact duplicates", issues.Duplicates))
	}
	if n := len(issues.Outliers); n > 0 {
		causes = append(causes, fmt.Sprintf("%d numeric columns contain outliers", n))
	}

	if len(causes) == 0 {
		return "No data quality problems were detected.", ConfidenceHigh, nil
	}
	return "Data quality issues found: " + strings.Join(causes, "; ") + ".",
		ConfidenceHigh, []string{fmt.Sprintf("issue sources: %d", len(causes))}
}

func (e *Engine) qualitySummary(ds *model.Dataset) (string, string, []string) {
	r := e.profiler.Score(ds)
	text := fmt.Sprintf("Quality score %s/100 (completeness %s%%, uniqueness %s%%, validity %s%%).",
		formatNumber(r.Overall), formatNumber(r.Completeness),
		formatNumber(r.Uniqueness), formatNumber(r.Validity))
	return text, ConfidenceHigh, nil
}

func (e *Engine) listDuplicates(ds *model.Dataset, limit int) (string, string, []string) {
	counts := make(map[string]int)
	order := make([]string, 0)
	render := make(map[string]string)
	for i := range ds.Rows {
		sig := ds.Signature(i)
		if counts[sig] == 0 {
			order = append(order, sig)
			parts := make([]string, len(ds.Rows[i]))
			for j, c := range ds.Rows[i] {
				parts[j] = c.String()
			}
			render[sig] = strings.Join(parts, ", ")
		}
		counts[sig]++
	}

	var lines []string
	dups := 0
	for _, sig := range order {
		if counts[sig] < 2 {
			continue
		}
		dups++
		if dups <= limit {
			lines = append(lines, fmt.Sprintf("[%s] appears %d times", render[sig], counts[sig]))
		}
	}
	if dups == 0 {
		return "No duplicate rows found.", ConfidenceHigh, nil
	}
	if dups > limit {
		lines = append(lines, fmt.Sprintf("and %d more", dups-limit))
	}
	return fmt.Sprintf("Found %d duplicated rows: %s.", dups, strings.Join(lines, "; ")),
		ConfidenceHigh, []string{fmt.Sprintf("distinct duplicated signatures: %d", dups)}
}

func countName(p Plan, ds *model.Dataset) (string, string, []string) {
	if p.NameToken == "" {
		return unknownText(), ConfidenceLow, nil
	}
	if p.Column == "" {
		return fmt.Sprintf("I could not find a name-like column to count %q in. Try \"how many rows\" or name the column directly.", p.NameToken),
			ConfidenceMedium, nil
	}

	// Whole-token matching: "mike" counts "mike brown" but not
	// "Mikela Jones".
	count := 0
	for _, c := range ds.Column(p.Column) {
		for _, word := range strings.Fields(strings.ToLower(c.String())) {
			if word == p.NameToken {
				count++
				break
			}
		}
	}
	return fmt.Sprintf("Found %d rows where %q appears in %q.", count, p.NameToken, p.Column),
		ConfidenceHigh, []string{
			fmt.Sprintf("resolved column: %s", p.Column),
			"match: whole token, case-insensitive",
		}
}

func topValues(p Plan, ds *model.Dataset) (string, string, []string) {
	if p.Column == "" {
		return "I could not tell which column to rank. Try \"top 5 customers\" or \"top products\".",
			ConfidenceMedium, nil
	}

	freq := make(map[string]int)
	display := make(map[string]string)
	for _, c := range ds.Column(p.Column) {
		if c.IsMissing() {
			continue
		}
		key := strings.ToLower(c.String())
		freq[key]++
		if _, seen := display[key]; !seen {
			display[key] = c.String()
		}
	}

	type entry struct {
		key   string
		count int
	}
	entries := make([]entry, 0, len(freq))
	for k, c := range freq {
		entries = append(entries, entry{k, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > p.TopN {
		entries = entries[:p.TopN]
	}

	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = fmt.Sprintf("%s (%d)", display[en.key], en.count)
	}
	return fmt.Sprintf("Top values in %q: %s.", p.Column, strings.Join(parts, ", ")),
		ConfidenceHigh, []string{fmt.Sprintf("resolved column: %s", p.Column)}
}

func groupSum(p Plan, ds *model.Dataset) (string, string, []string) {
	if p.Metric == "" {
		return "I could not tell which numeric column to sum. Try \"revenue by category\".",
			ConfidenceMedium, nil
	}
	if p.GroupBy == "" {
		return "I could not find a column to group by. Try \"revenue by category\".",
			ConfidenceMedium, nil
	}

	// Group keys are lowercased here so "Electronics" and
	// "electronics" land in one bucket; the query builder keeps keys
	// case-sensitive, which is its contract, not this one.
	sums := make(map[string]float64)
	display := make(map[string]string)
	skipped := 0
	for i := range ds.Rows {
		v, ok := ds.Value(i, p.Metric).Coerce()
		if !ok {
			skipped++
			continue
		}
		label := ds.Value(i, p.GroupBy).String()
		if strings.TrimSpace(label) == "" {
			label = "(blank)"
		}
		key := strings.ToLower(label)
		sums[key] += v
		if _, seen := display[key]; !seen {
			display[key] = label
		}
	}

	type entry struct {
		key string
		sum float64
	}
	entries := make([]entry, 0, len(sums))
	for k, s := range sums {
		entries = append(entries, entry{k, s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sum != entries[j].sum {
			return entries[i].sum > entries[j].sum
		}
		return entries[i].key < entries[j].key
	})

	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = fmt.Sprintf("%s: %s", display[en.key], formatNumber(en.sum))
	}
	text := fmt.Sprintf("%s by %s: %s.", p.Metric, p.GroupBy, strings.Join(parts, ", "))
	if skipped > 0 {
		text += fmt.Sprintf(" Skipped %d non-numeric values.", skipped)
	}
	return text, ConfidenceHigh, []string{
		fmt.Sprintf("metric column: %s", p.Metric),
		fmt.Sprintf("group column: %s", p.GroupBy),
		fmt.Sprintf("skipped non-numeric: %d", skipped),
	}
}

func sumMetric(p Plan, ds *model.Dataset) (string, string, []string) {
	if p.Metric == "" {
		return "I could not tell which column to total. Try \"total revenue\".",
			ConfidenceMedium, nil
	}

	total := 0.0
	counted, skipped := 0, 0
	for _, c := range ds.Column(p.Metric) {
		v, ok := c.Coerce()
		if !ok {
			skipped++
			continue
		}
		total += v
		counted++
	}

	text := fmt.Sprintf("Total %s: %s across %d rows.", p.Metric, formatNumber(total), counted)
	if skipped > 0 {
		text += fmt.Sprintf(" Skipped %d non-numeric values.", skipped)
	}
	return text, ConfidenceHigh, []string{
		fmt.Sprintf("metric column: %s", p.Metric),
		fmt.Sprintf("skipped non-numeric: %d", skipped),
	}
}

// pickValueColumn chooses the column a TOP_VALUES question ranks:
// whichever categorical role is mentioned, defaulting to the
// customer-like column.
func pickValueColumn(q string, headers []string) (string, bool) {
	for _, role := range []string{"customer", "product", "category", "status", "region"} {
		for _, syn := range roleSynonyms[role] {
			if strings.Contains(q, syn) {
				if h, ok := ResolveRole(headers, role); ok {
					return h, true
				}
			}
		}
	}
	return ResolveRole(headers, "customer")
}

// resolveMetric finds the numeric column a question is about, trying
// role synonyms first, then direct header mentions.
func resolveMetric(q string, headers []string) (string, bool) {
	for _, role := range []string{"revenue", "quantity"} {
		for _, syn := range roleSynonyms[role] {
			if strings.Contains(q, syn) {
				if h, ok := ResolveRole(headers, role); ok {
					return h, true
				}
			}
		}
	}
	for _, h := range headers {
		if nh := normalize(h); nh != "" && strings.Contains(q, nh) {
			return h, true
		}
	}
	return "", false
}

// afterBy returns the group token: everything after the last " by ".
func afterBy(q string) string {
	i := strings.LastIndex(q, " by ")
	if i < 0 {
		return ""
	}
	return strings.Trim(strings.TrimSpace(q[i+4:]), "?.!")
}

func unknownText() string {
	return "I did not understand that question. Try one of: " +
		`"what is the data quality?", "how many rows?", "how many duplicates?", ` +
		`"top 5 customers", "total revenue", or "sales by category".`
}

func viewOf(ds *model.Dataset, idx []int) *model.Dataset {
	v := model.NewDataset(ds.Columns)
	for _, i := range idx {
		row := make(model.Row, len(ds.Rows[i]))
		copy(row, ds.Rows[i])
		v.Append(row)
	}
	return v
}

// formatNumber renders integral values without a decimal point and
// everything else with two places.
func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
