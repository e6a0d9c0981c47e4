package viz

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// Render writes the chart as a standalone HTML document.
func Render(chart *Chart, w io.Writer) error {
	switch chart.Spec.Type {
	case TypePie:
		return renderPie(chart, w)
	case TypeBar:
		return renderBar(chart, w)
	case TypeLine:
		return renderLine(chart, w)
	case TypeScatter:
		return renderScatter(chart, w)
	default:
		return apperrors.Newf(apperrors.ErrTypeVisualization,
			"unsupported chart type: %s", chart.Spec.Type)
	}
}

// RenderHTML renders the chart to an HTML file, creating parent directories
// as needed.
func RenderHTML(chart *Chart, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Render(chart, f)
}

func renderPie(chart *Chart, w io.Writer) error {
	labels, err := categoryValues(chart)
	if err != nil {
		return err
	}

	values, err := seriesValues(chart, chart.Spec.Y[0])
	if err != nil {
		return err
	}

	items := make([]opts.PieData, len(labels))
	for i, label := range labels {
		items[i] = opts.PieData{Name: label, Value: values[i]}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: chart.Spec.Title}))
	pie.AddSeries(chart.Spec.Y[0], items)

	return pie.Render(w)
}

func renderBar(chart *Chart, w io.Writer) error {
	labels, err := categoryValues(chart)
	if err != nil {
		return err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: chart.Spec.Title}))
	bar.SetXAxis(labels)

	for _, y := range chart.Spec.Y {
		values, err := seriesValues(chart, y)
		if err != nil {
			return err
		}

		items := make([]opts.BarData, len(values))
		for i, v := range values {
			items[i] = opts.BarData{Value: v}
		}

		bar.AddSeries(y, items)
	}

	return bar.Render(w)
}

func renderLine(chart *Chart, w io.Writer) error {
	labels, err := categoryValues(chart)
	if err != nil {
		return err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: chart.Spec.Title}))
	line.SetXAxis(labels)

	for _, y := range chart.Spec.Y {
		values, err := seriesValues(chart, y)
		if err != nil {
			return err
		}

		items := make([]opts.LineData, len(values))
		for i, v := range values {
			items[i] = opts.LineData{Value: v}
		}

		line.AddSeries(y, items)
	}

	return line.Render(w)
}

func renderScatter(chart *Chart, w io.Writer) error {
	labels, err := categoryValues(chart)
	if err != nil {
		return err
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: chart.Spec.Title}))
	scatter.SetXAxis(labels)

	for _, y := range chart.Spec.Y {
		values, err := seriesValues(chart, y)
		if err != nil {
			return err
		}

		items := make([]opts.ScatterData, len(values))
		for i, v := range values {
			items[i] = opts.ScatterData{Value: v}
		}

		scatter.AddSeries(y, items)
	}

	return scatter.Render(w)
}

// categoryValues renders the X column as axis labels. An unbound X falls
// back to row indices.
func categoryValues(chart *Chart) ([]string, error) {
	rs := chart.Data

	if chart.Spec.X == "" {
		labels := make([]string, rs.RowCount())
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}

		return labels, nil
	}

	idx, err := columnIndex(rs, chart.Spec.X)
	if err != nil {
		return nil, err
	}

	labels := make([]string, rs.RowCount())
	for i, row := range rs.Rows {
		labels[i] = warehouse.CellString(row[idx])
	}

	return labels, nil
}

// seriesValues extracts a value column, preferring numeric values and
// falling back to display strings for non-numeric columns.
func seriesValues(chart *Chart, column string) ([]interface{}, error) {
	rs := chart.Data

	idx, err := columnIndex(rs, column)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, rs.RowCount())

	for i, row := range rs.Rows {
		if f, ok := warehouse.Float64(row[idx]); ok {
			values[i] = f
		} else {
			values[i] = warehouse.CellString(row[idx])
		}
	}

	return values, nil
}

func columnIndex(rs *warehouse.ResultSet, column string) (int, error) {
	for i, c := range rs.Columns {
		if c == column {
			return i, nil
		}
	}

	return 0, apperrors.Newf(apperrors.ErrTypeVisualization,
		"chart references unknown column: %s", column)
}
