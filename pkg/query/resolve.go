package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumee7/project1autoinsight/internal/model"
)

// roleSynonyms maps semantic roles to header spellings commonly seen in
// the wild. Resolution tries exact normalized matches first and only
// then substring containment, so "Customer Name" wins over a header
// that merely mentions "name" somewhere.
var roleSynonyms = map[string][]string{
	"customer": {"customer", "customer name", "client", "name", "buyer", "account"},
	"product":  {"product", "product name", "item", "sku"},
	"category": {"category", "type", "segment", "department"},
	"date":     {"date", "order date", "created", "timestamp", "day"},
	"revenue":  {"revenue", "sales", "amount", "price", "total", "value", "cost"},
	"quantity": {"quantity", "qty", "units", "count"},
	"status":   {"status", "state", "stage"},
	"region":   {"region", "country", "location", "territory", "area"},
}

// ResolveRole finds the header filling a semantic role, trying every
// synonym exactly before falling back to substring containment.
func ResolveRole(headers []string, role string) (string, bool) {
	syns := roleSynonyms[role]
	for _, syn := range syns {
		for _, h := range headers {
			if normalize(h) == syn {
				return h, true
			}
		}
	}
	for _, syn := range syns {
		for _, h := range headers {
			if strings.Contains(normalize(h), syn) {
				return h, true
			}
		}
	}
	return "", false
}

// ResolveColumn matches a free-form token against the real header
// list, exact first, then substring in either direction.
func ResolveColumn(headers []string, token string) (string, bool) {
	tok := normalize(token)
	if tok == "" {
		return "", false
	}
	for _, h := range headers {
		if normalize(h) == tok {
			return h, true
		}
	}
	for _, h := range headers {
		nh := normalize(h)
		if strings.Contains(nh, tok) || strings.Contains(tok, nh) {
			return h, true
		}
	}
	return "", false
}

var wherePattern = regexp.MustCompile(`where\s+(.+?)\s+(contains|is|=)\s+(.+)$`)

// parseFilters extracts a trailing "where <col> <op> <value>" clause.
// Two operator shapes are supported: "contains" and "is"/"=". The
// column token resolves against the real headers; an unresolvable
// column yields no filter plus a note for the audit trail.
func parseFilters(q string, headers []string) (filters []model.Filter, notes []string) {
	m := wherePattern.FindStringSubmatch(q)
	if m == nil {
		return nil, nil
	}

	value := strings.Trim(strings.TrimSpace(m[3]), `"'?.!`)
	col, ok := ResolveColumn(headers, m[1])
	if !ok {
		return nil, []string{fmt.Sprintf("filter dropped: no column matches %q", m[1])}
	}

	op := model.OpEquals
	if m[2] == "contains" {
		op = model.OpContains
	}
	f := model.Filter{Column: col, Op: op, Value: value}
	notes = append(notes, fmt.Sprintf("filter: %s %s %q", col, m[2], value))
	return []model.Filter{f}, notes
}

// stripWhere removes the filter clause so intent-specific token hunts
// do not mistake filter words for metric or group names.
func stripWhere(q string) string {
	if i := strings.Index(q, "where "); i >= 0 {
		return strings.TrimSpace(q[:i])
	}
	return q
}
