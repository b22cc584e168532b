package query

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a question. The set is closed;
// anything that fails every predicate falls through to IntentUnknown.
type Intent string

const (
	IntentWhyRaw          Intent = "WHY_RAW"
	IntentQualitySummary  Intent = "QUALITY_SUMMARY"
	IntentListDuplicates  Intent = "LIST_DUPLICATES"
	IntentCountDuplicates Intent = "COUNT_DUPLICATES"
	IntentCountRows       Intent = "COUNT_ROWS"
	IntentCountName       Intent = "COUNT_NAME"
	IntentTopValues       Intent = "TOP_VALUES"
	IntentGroupSum        Intent = "GROUP_SUM"
	IntentSum             Intent = "SUM"
	IntentUnknown         Intent = "UNKNOWN"
)

// rule pairs a predicate with the intent it selects. The rules slice is
// an ordered decision table: Classify walks it top to bottom and the
// first matching predicate wins, so precedence lives here and nowhere
// else.
type rule struct {
	intent Intent
	match  func(q string) bool
}

var rules = []rule{
	{IntentWhyRaw, func(q string) bool {
		return strings.Contains(q, "why")
	}},
	{IntentQualitySummary, func(q string) bool {
		return hasAny(q, "quality", "how good", "how clean", "health", "score")
	}},
	{IntentListDuplicates, func(q string) bool {
		return strings.Contains(q, "duplicate") && hasAny(q, "show", "list", "which", "what are")
	}},
	{IntentCountDuplicates, func(q string) bool {
		return hasAny(q, "duplicate", "dupes")
	}},
	{IntentCountRows, func(q string) bool {
		return hasAny(q, "how many rows", "how many records", "number of rows",
			"number of records", "row count", "total rows")
	}},
	{IntentCountName, func(q string) bool {
		_, ok := countNameToken(q)
		return ok
	}},
	{IntentTopValues, func(q string) bool {
		return hasAny(q, "top ", "most common", "most frequent")
	}},
	{IntentGroupSum, func(q string) bool {
		return strings.Contains(q, " by ")
	}},
	{IntentSum, func(q string) bool {
		return hasAny(q, "total", "sum")
	}},
}

// Classify maps a question to an intent by walking the decision table.
func Classify(question string) Intent {
	q := normalize(question)
	for _, r := range rules {
		if r.match(q) {
			return r.intent
		}
	}
	return IntentUnknown
}

var countNamePattern = regexp.MustCompile(`how many ([a-z][a-z0-9]*)`)

// countNameStop lists tokens after "how many" that ask about the table
// itself rather than a value in it. Those questions belong to earlier
// rules; the stop set keeps COUNT_NAME from absorbing them if rule
// order ever changes.
var countNameStop = map[string]bool{
	"rows": true, "records": true, "entries": true, "columns": true,
	"duplicates": true, "dupes": true, "values": true, "unique": true,
	"missing": true, "outliers": true, "are": true, "of": true,
	"total": true, "times": true,
}

// countNameToken extracts the bare name token from questions like
// "how many mike are there".
func countNameToken(q string) (string, bool) {
	m := countNamePattern.FindStringSubmatch(q)
	if m == nil || countNameStop[m[1]] {
		return "", false
	}
	return m[1], true
}

func hasAny(q string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(q, s) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}
