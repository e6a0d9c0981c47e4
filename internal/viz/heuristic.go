package viz

import (
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// pieRowLimit is the largest category count a pie chart stays readable at.
const pieRowLimit = 10

// DefaultSpec picks a chart for the shape of the data. Two columns with a
// numeric second column become a pie chart for small category counts and a
// bar chart otherwise; two columns with a non-numeric second column become a
// bar chart; anything wider becomes a line chart over all value columns.
func DefaultSpec(rs *warehouse.ResultSet) (*Spec, error) {
	if rs == nil || len(rs.Columns) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeVisualization,
			"no query results to visualize")
	}

	if len(rs.Columns) == 2 {
		xCol, yCol := rs.Columns[0], rs.Columns[1]
		title := yCol + " by " + xCol

		if rs.IsNumericColumn(1) && rs.RowCount() <= pieRowLimit {
			return &Spec{Type: TypePie, Title: title, X: xCol, Y: []string{yCol}}, nil
		}

		return &Spec{Type: TypeBar, Title: title, X: xCol, Y: []string{yCol}}, nil
	}

	if len(rs.Columns) == 1 {
		return &Spec{
			Type:  TypeLine,
			Title: "Data Visualization",
			Y:     []string{rs.Columns[0]},
		}, nil
	}

	return &Spec{
		Type:  TypeLine,
		Title: "Data Visualization",
		X:     rs.Columns[0],
		Y:     rs.Columns[1:],
	}, nil
}
