package llm

import (
	"context"
	"fmt"
)

// FallbackReason explains why the canned completion is being served.
type FallbackReason string

const (
	// ReasonNotConfigured means no completion credentials were available.
	ReasonNotConfigured FallbackReason = "OpenAI API not configured"
	// ReasonCallFailed means a completion call was attempted and failed.
	ReasonCallFailed FallbackReason = "OpenAI API error occurred"
)

const fallbackTemplate = "```sql" + `
USE sales;
-- Sample query (%s)
SELECT
    store_name,
    SUM(net_sales) AS total_sales
FROM
    abacus_daily_summary
GROUP BY
    store_name
ORDER BY
    total_sales DESC
LIMIT 10
` + "```"

// FallbackService serves a canned completion so the rest of the pipeline can
// still run when the real service is unavailable. The canned text mimics a
// real completion: a fenced SQL block answering a generic top-stores question.
type FallbackService struct {
	reason FallbackReason
}

// NewFallbackService creates a fallback service annotated with the reason the
// real service could not be used.
func NewFallbackService(reason FallbackReason) *FallbackService {
	return &FallbackService{reason: reason}
}

// Complete returns the canned completion regardless of the prompts.
func (f *FallbackService) Complete(_ context.Context, _, _ string) (string, error) {
	return fmt.Sprintf(fallbackTemplate, f.reason), nil
}

// Reason returns why the fallback is in use.
func (f *FallbackService) Reason() FallbackReason {
	return f.reason
}
