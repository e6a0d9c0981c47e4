// Package dialect rewrites generated SQL into the form the warehouse
// accepts. The rewrites are surface-level text substitution in a fixed
// order; parsing the SQL is out of scope.
package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UseStatement is the context statement every query must start with.
const UseStatement = "USE sales;"

// relativeDate matches date('now', '-N days') and its month/year variants.
var relativeDate = regexp.MustCompile(`date\(\s*'now'\s*,\s*'-(\d+)\s+(day|month|year)s?'\s*\)`)

// Days per unit in relative-date rewrites. Months and years are approximated
// as 30 and 365 days; a query for "-1 month" therefore reads 30 days back
// regardless of calendar month length. Callers relying on exact month
// boundaries should phrase the question with explicit dates.
var unitDays = map[string]int{
	"day":   1,
	"month": 30,
	"year":  365,
}

// Ordered format-code rewrites. Longer codes come first so '%Y-%m-%d' is not
// half-rewritten by the shorter '%Y-%m' rule.
var formatRewrites = []struct {
	from string
	to   string
}{
	{"'%Y-%m-01'", "'yyyy-MM-01'"},
	{"'%Y-%m-%d'", "'yyyy-MM-dd'"},
	{"'%Y-%m'", "'yyyy-MM'"},
	{"'%Y'", "'yyyy'"},
}

// Normalize rewrites a generated query for the warehouse dialect. The rules
// apply in order: relative-date intervals, date format codes, comparison
// operators, then the USE-prefix guarantee. Normalize is idempotent, so
// re-normalizing an already normalized query changes nothing.
func Normalize(sql string) string {
	out := strings.TrimSpace(sql)
	if out == "" {
		return UseStatement
	}

	out = relativeDate.ReplaceAllStringFunc(out, func(match string) string {
		groups := relativeDate.FindStringSubmatch(match)

		n, err := strconv.Atoi(groups[1])
		if err != nil {
			return match
		}

		return fmt.Sprintf("date_sub(current_date(), %d)", n*unitDays[groups[2]])
	})

	for _, r := range formatRewrites {
		out = strings.ReplaceAll(out, r.from, r.to)
	}

	out = strings.ReplaceAll(out, "≥", ">=")
	out = strings.ReplaceAll(out, "≤", "<=")

	if !strings.HasPrefix(out, UseStatement) {
		out = UseStatement + "\n" + out
	}

	return out
}

// Split separates the leading context statement from the substantive query.
// The second value is the query with the context statement removed and
// trimmed.
func Split(sql string) (useStmt, query string) {
	trimmed := strings.TrimSpace(sql)
	if !strings.HasPrefix(trimmed, UseStatement) {
		return "", trimmed
	}

	return UseStatement, strings.TrimSpace(strings.TrimPrefix(trimmed, UseStatement))
}
