// Package extract pulls fenced code blocks out of completion text. The
// splitting is literal marker matching, not markdown parsing, so edge cases
// behave the same way for every completion the service returns.
package extract

import "strings"

const (
	sqlFence    = "```sql"
	pythonFence = "```python"
	fence       = "```"
)

// SQL returns the contents of the first ```sql fenced block. When no sql
// fence is present, the text before the first fence of any kind is returned
// instead, which covers completions that lead with bare SQL.
func SQL(raw string) string {
	if strings.Contains(raw, sqlFence) {
		after := strings.SplitN(raw, sqlFence, 2)[1]
		return strings.TrimSpace(strings.SplitN(after, fence, 2)[0])
	}

	return strings.TrimSpace(strings.SplitN(raw, fence, 2)[0])
}

// Visualization returns the contents of the first ```python fenced block.
// The second return value distinguishes a missing fence (false) from a fence
// that is present but empty (true with ""): only the former means the
// completion carried no chart code at all.
func Visualization(raw string) (string, bool) {
	if !strings.Contains(raw, pythonFence) {
		return "", false
	}

	after := strings.SplitN(raw, pythonFence, 2)[1]

	return strings.TrimSpace(strings.SplitN(after, fence, 2)[0]), true
}
