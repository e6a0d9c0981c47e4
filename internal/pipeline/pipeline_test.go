package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolld/sales-assistant/internal/catalog"
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/llm"
	"github.com/rolld/sales-assistant/internal/prompt"
	"github.com/rolld/sales-assistant/internal/relevance"
	"github.com/rolld/sales-assistant/internal/viz"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// stubService returns a fixed completion, or an error when failWith is set.
type stubService struct {
	response   string
	failWith   error
	lastPrompt string
}

func (s *stubService) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.lastPrompt = userPrompt

	if s.failWith != nil {
		return "", s.failWith
	}

	return s.response, nil
}

// stubExecutor returns a fixed result set and records the query it ran.
type stubExecutor struct {
	result  *warehouse.ResultSet
	failErr error
	lastSQL string
}

func (e *stubExecutor) Execute(_ context.Context, sqlText string) (*warehouse.ResultSet, error) {
	e.lastSQL = sqlText

	if e.failErr != nil {
		return nil, e.failErr
	}

	return e.result, nil
}

func (e *stubExecutor) Close() error { return nil }

func salesResult(rows int) *warehouse.ResultSet {
	rs := &warehouse.ResultSet{
		Columns: []string{"store_name", "total_sales"},
		Types:   []string{"STRING", "DECIMAL(9,2)"},
	}

	for i := range rows {
		rs.Rows = append(rs.Rows, []interface{}{
			fmt.Sprintf("store-%d", i), float64((rows - i) * 100),
		})
	}

	return rs
}

func newPipeline(t *testing.T, svc llm.Service, exec warehouse.Executor) *Pipeline {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	return &Pipeline{
		Catalog:  cat,
		Policy:   relevance.KeywordPolicy{},
		Service:  svc,
		Executor: exec,
	}
}

func TestRunEndToEndVisualization(t *testing.T) {
	svc := &stubService{
		response: "```sql\nUSE sales;\nSELECT store_name, SUM(net_sales) AS total_sales FROM master GROUP BY store_name\n```\n" +
			"```python\nfig = px.bar(df, x='store_name', y='total_sales', title='Net sales by store')\n```",
	}
	exec := &stubExecutor{result: salesResult(12)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("Show me net sales by store last month", prompt.ModeVisualization))
	require.NoError(t, err)

	// The month/date wording selects the calendar table alongside sales tables
	assert.Contains(t, outcome.SelectedTables, "abacus_3pl_daily_summary")
	assert.Contains(t, outcome.SelectedTables, "master")
	assert.Contains(t, outcome.SelectedTables, "retail_calendar")

	assert.Contains(t, svc.lastPrompt, "Show me net sales by store last month")

	assert.Contains(t, outcome.SQL, "USE sales;")
	assert.Equal(t, outcome.SQL, exec.lastSQL)

	require.NotNil(t, outcome.Result)
	assert.Equal(t, 12, outcome.Result.RowCount())

	require.NotNil(t, outcome.Chart)
	assert.Equal(t, viz.TypeBar, outcome.Chart.Spec.Type)
	assert.Equal(t, "Net sales by store", outcome.Chart.Spec.Title)

	assert.Empty(t, outcome.Warnings)
}

func TestRunSQLModeSkipsChart(t *testing.T) {
	svc := &stubService{response: "```sql\nUSE sales;\nSELECT 1\n```"}
	exec := &stubExecutor{result: salesResult(2)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeSQL))
	require.NoError(t, err)

	assert.NotNil(t, outcome.Result)
	assert.Nil(t, outcome.Chart)
}

func TestRunNoRelevantTablesShortCircuits(t *testing.T) {
	svc := &stubService{response: "should never be called"}
	exec := &stubExecutor{result: salesResult(1)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("what is the meaning of life", prompt.ModeSQL))
	require.Error(t, err)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNoRelevantTables))
	assert.Empty(t, outcome.SelectedTables)
	// The completion service was never called
	assert.Empty(t, svc.lastPrompt)
}

func TestRunCompletionFailureFallsBack(t *testing.T) {
	svc := &stubService{failWith: apperrors.New(apperrors.ErrTypeCompletion, "boom")}
	exec := &stubExecutor{result: salesResult(5)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeSQL))
	require.NoError(t, err)

	assert.Contains(t, outcome.RawCompletion, "OpenAI API error occurred")
	assert.Contains(t, outcome.SQL, "abacus_daily_summary")
	assert.NotEmpty(t, outcome.Warnings)
	assert.NotNil(t, outcome.Result)
}

func TestRunMalformedCompletion(t *testing.T) {
	// A completion that is nothing but a fence yields no SQL
	svc := &stubService{response: "```python\nfig = px.bar(df)\n```"}
	exec := &stubExecutor{result: salesResult(1)}

	p := newPipeline(t, svc, exec)

	_, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeSQL))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformedCompletion))
}

func TestRunQueryFailureReturnsPartialOutcome(t *testing.T) {
	svc := &stubService{response: "```sql\nUSE sales;\nSELECT bad_column FROM master\n```"}
	exec := &stubExecutor{failErr: apperrors.New(apperrors.ErrTypeQueryExecution, "column not found")}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeSQL))
	require.Error(t, err)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeQueryExecution))
	// The SQL that failed is still reported
	assert.Contains(t, outcome.SQL, "SELECT bad_column FROM master")
	assert.Nil(t, outcome.Result)
}

func TestRunBadChartCodeFallsBackToDefault(t *testing.T) {
	svc := &stubService{
		response: "```sql\nUSE sales;\nSELECT store_name, total_sales FROM master\n```\n" +
			"```python\nfig = px.treemap(df, path='store_name')\n```",
	}
	exec := &stubExecutor{result: salesResult(4)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeVisualization))
	require.NoError(t, err)

	require.NotNil(t, outcome.Chart)
	// 4 rows, numeric second column: the default chart is a pie
	assert.Equal(t, viz.TypePie, outcome.Chart.Spec.Type)
	assert.NotEmpty(t, outcome.Warnings)
}

func TestRunVisualizationWithoutCodeUsesHeuristic(t *testing.T) {
	svc := &stubService{response: "```sql\nUSE sales;\nSELECT store_name, total_sales FROM master\n```"}
	exec := &stubExecutor{result: salesResult(20)}

	p := newPipeline(t, svc, exec)

	outcome, err := p.Run(context.Background(), NewRequest("total sales per store", prompt.ModeVisualization))
	require.NoError(t, err)

	require.NotNil(t, outcome.Chart)
	assert.Equal(t, viz.TypeBar, outcome.Chart.Spec.Type)
	assert.Empty(t, outcome.Warnings)
}

func TestRunValidatesRequest(t *testing.T) {
	p := newPipeline(t, &stubService{}, &stubExecutor{})

	_, err := p.Run(context.Background(), NewRequest("   ", prompt.ModeSQL))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = p.Run(context.Background(), Request{Question: "total sales", Mode: prompt.Mode("chart")})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestNewRequestTrimsAndAssignsID(t *testing.T) {
	req := NewRequest("  total sales  ", prompt.ModeSQL)

	assert.Equal(t, "total sales", req.Question)
	assert.NotEmpty(t, req.ID.String())

	other := NewRequest("total sales", prompt.ModeSQL)
	assert.NotEqual(t, req.ID, other.ID)
}
