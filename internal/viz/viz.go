// Package viz turns query results into chart artifacts. Generated chart code
// is never executed: it is screened, sanitized, and interpreted as a
// declarative chart spec bound to the query's result set. When no code is
// available a heuristic picks a sensible default chart for the data shape.
package viz

import (
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// ChartType identifies the supported chart kinds.
type ChartType string

const (
	TypePie     ChartType = "pie"
	TypeBar     ChartType = "bar"
	TypeLine    ChartType = "line"
	TypeScatter ChartType = "scatter"
)

// Spec is a declarative chart description: a chart type plus column bindings
// into the result set. X is the category/label column ("" means the row
// index); Y lists the value columns.
type Spec struct {
	Type  ChartType
	Title string
	X     string
	Y     []string
}

// Chart binds a spec to the result set it draws from.
type Chart struct {
	Spec Spec
	Data *warehouse.ResultSet
}

// Synthesize produces a chart for a result set. When hasCode is false or the
// code is empty the default heuristic decides the chart; otherwise the code
// is interpreted into a spec. Interpretation failures are returned as
// visualization errors so the caller can fall back to the heuristic.
func Synthesize(code string, hasCode bool, rs *warehouse.ResultSet) (*Chart, error) {
	if rs == nil || len(rs.Columns) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeVisualization,
			"no query results to visualize")
	}

	if !hasCode || code == "" {
		spec, err := DefaultSpec(rs)
		if err != nil {
			return nil, err
		}

		return &Chart{Spec: *spec, Data: rs}, nil
	}

	spec, err := Interpret(code, rs)
	if err != nil {
		return nil, err
	}

	return &Chart{Spec: *spec, Data: rs}, nil
}

// DefaultChart applies the heuristic directly, ignoring any generated code.
func DefaultChart(rs *warehouse.ResultSet) (*Chart, error) {
	return Synthesize("", false, rs)
}
