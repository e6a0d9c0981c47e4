// Package relevance decides which warehouse tables a business question is
// about. The selection happens before any completion call: an empty result
// short-circuits the pipeline with a rephrase suggestion instead of burning
// a request on a question the schema cannot answer.
package relevance

import (
	"sort"
	"strings"

	"github.com/rolld/sales-assistant/internal/catalog"
)

// Policy selects tables for a question against a catalog. Implementations
// must be pure and case-insensitive with respect to the question.
type Policy interface {
	Select(question string, cat *catalog.Catalog) []string
}

// Keyword terms per query category. Matching any term pulls in the category's
// table list below.
var (
	salesKeywords = []string{"sales", "revenue", "income", "earnings", "revenue"}
	itemKeywords  = []string{"item", "product", "menu", "food", "drink", "quantity", "items sold"}
	storeKeywords = []string{"store", "location", "branch", "outlet"}
	dateKeywords  = []string{"daily", "weekly", "monthly", "yearly", "day", "week", "month", "year", "date", "period", "time"}
)

// Table lists per category. These are curated, not derived from the schema:
// the schema carries backup/test/variance tables that should never be offered
// to the completion model.
var (
	salesTables = []string{
		"abacus_3pl_daily_summary",
		"abacus_cash_card_daily_summary",
		"abacus_grocery_daily_summary",
		"app_web_daily_summary",
		"hms_host_daily_summary",
		"master",
		"ro_master",
	}
	itemTables = []string{
		"abacus_daily_data",
		"abacus_item_weekly_summary",
		"abacus_weekly_variants",
		"rolld_prop_daily_data",
	}
	storeTables = []string{
		"store_info",
		"ro_store_info",
	}
	dateTables = []string{
		"retail_calendar",
	}
)

// KeywordPolicy maps question keywords to curated table lists. This is the
// default policy.
type KeywordPolicy struct{}

// Select returns the union of the category table lists whose keywords appear
// in the question, deduplicated and sorted. An empty slice is a valid result
// and means the question matched no category.
func (KeywordPolicy) Select(question string, _ *catalog.Catalog) []string {
	lower := strings.ToLower(question)

	var selected []string

	if containsAny(lower, salesKeywords) {
		selected = append(selected, salesTables...)
	}

	if containsAny(lower, itemKeywords) {
		selected = append(selected, itemTables...)
	}

	if containsAny(lower, storeKeywords) {
		selected = append(selected, storeTables...)
	}

	if containsAny(lower, dateKeywords) {
		selected = append(selected, dateTables...)
	}

	return dedupeSorted(selected)
}

// SubstringPolicy is the legacy selector: it keeps a table when its schema
// header line contains the whole question, case-insensitively. Because a
// multi-word question is almost never a substring of a header line, this
// policy rarely matches anything beyond single-word questions. It is retained
// for comparison, not recommended.
type SubstringPolicy struct{}

// Select returns tables whose header line contains the question.
func (SubstringPolicy) Select(question string, cat *catalog.Catalog) []string {
	lower := strings.ToLower(strings.TrimSpace(question))
	if lower == "" {
		return nil
	}

	var selected []string

	for _, name := range cat.TableNames() {
		if strings.Contains(strings.ToLower(cat.SchemaLine(name)), lower) {
			selected = append(selected, name)
		}
	}

	return dedupeSorted(selected)
}

// ForName returns the policy registered under the given name.
func ForName(name string) (Policy, bool) {
	switch name {
	case "", "keyword":
		return KeywordPolicy{}, true
	case "substring":
		return SubstringPolicy{}, true
	default:
		return nil, false
	}
}

func containsAny(question string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(question, kw) {
			return true
		}
	}

	return false
}

func dedupeSorted(tables []string) []string {
	if len(tables) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tables))

	var out []string

	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}

		out = append(out, t)
	}

	sort.Strings(out)

	return out
}
