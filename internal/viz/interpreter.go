package viz

import (
	"regexp"
	"strings"

	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

// Chart construction recognizers. Argument capture stops at the first closing
// parenthesis, which matches how the generated code is shaped: a single
// constructor call with flat keyword arguments.
var (
	figPxCall  = regexp.MustCompile(`fig\s*=\s*px\.([a-zA-Z_]+)\(([^)]*)\)`)
	pxCall     = regexp.MustCompile(`px\.([a-zA-Z_]+)\(([^)]*)\)`)
	goFigure   = regexp.MustCompile(`go\.Figure\(([^)]*)\)`)
	goTrace    = regexp.MustCompile(`go\.(Pie|Bar|Scatter)\(`)
	kwargStr   = regexp.MustCompile(`([a-zA-Z_]+)\s*=\s*['"]([^'"]*)['"]`)
	kwargList  = regexp.MustCompile(`([a-zA-Z_]+)\s*=\s*\[([^\]]*)\]`)
	quotedItem = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

var pxChartTypes = map[string]ChartType{
	"pie":     TypePie,
	"bar":     TypeBar,
	"line":    TypeLine,
	"scatter": TypeScatter,
}

// Interpret reads sanitized chart code as a declarative spec. It recognizes
// a single px.pie/bar/line/scatter(...) or go.Figure(...) construction and
// binds its keyword arguments against the result set columns. The code is
// treated as data throughout; nothing is evaluated.
func Interpret(code string, rs *warehouse.ResultSet) (*Spec, error) {
	sanitized, err := Sanitize(code)
	if err != nil {
		return nil, err
	}

	// Mirror the original assignment synthesis: when no fig assignment
	// exists but a construction call does, the call is the figure.
	if !strings.Contains(sanitized, "fig = ") {
		if m := pxCall.FindString(sanitized); m != "" {
			sanitized += "\nfig = " + m
		} else if m := goFigure.FindString(sanitized); m != "" {
			sanitized += "\nfig = " + m
		}
	}

	if m := figPxCall.FindStringSubmatch(sanitized); m != nil {
		return interpretPxCall(m[1], m[2], rs)
	}

	if goFigure.MatchString(sanitized) {
		return interpretGoFigure(sanitized, rs)
	}

	return nil, apperrors.New(apperrors.ErrTypeVisualization,
		"no chart construction found in the generated code")
}

func interpretPxCall(kind, args string, rs *warehouse.ResultSet) (*Spec, error) {
	chartType, ok := pxChartTypes[kind]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrTypeVisualization,
			"unsupported chart type: px.%s", kind)
	}

	kwargs, lists := parseKwargs(args)

	spec := &Spec{Type: chartType}

	if chartType == TypePie {
		spec.X = firstOf(kwargs, "names", "x")
		if v := firstOf(kwargs, "values", "y"); v != "" {
			spec.Y = []string{v}
		}
	} else {
		spec.X = kwargs["x"]
		if ys, ok := lists["y"]; ok {
			spec.Y = ys
		} else if y := kwargs["y"]; y != "" {
			spec.Y = []string{y}
		}
	}

	spec.Title = kwargs["title"]

	return finishSpec(spec, rs)
}

func interpretGoFigure(code string, rs *warehouse.ResultSet) (*Spec, error) {
	trace := goTrace.FindStringSubmatch(code)
	if trace == nil {
		return nil, apperrors.New(apperrors.ErrTypeVisualization,
			"go.Figure call without a recognizable trace")
	}

	var chartType ChartType

	switch trace[1] {
	case "Pie":
		chartType = TypePie
	case "Bar":
		chartType = TypeBar
	case "Scatter":
		chartType = TypeScatter
	}

	kwargs, lists := parseKwargs(code)

	spec := &Spec{Type: chartType}

	if chartType == TypePie {
		spec.X = firstOf(kwargs, "labels", "names")
		if v := firstOf(kwargs, "values"); v != "" {
			spec.Y = []string{v}
		}
	} else {
		spec.X = kwargs["x"]
		if ys, ok := lists["y"]; ok {
			spec.Y = ys
		} else if y := kwargs["y"]; y != "" {
			spec.Y = []string{y}
		}
	}

	spec.Title = kwargs["title"]

	return finishSpec(spec, rs)
}

// finishSpec fills missing bindings from the result shape and validates that
// every bound column exists.
func finishSpec(spec *Spec, rs *warehouse.ResultSet) (*Spec, error) {
	if spec.X == "" && len(rs.Columns) > 0 {
		spec.X = rs.Columns[0]
	}

	if len(spec.Y) == 0 {
		if len(rs.Columns) >= 2 {
			spec.Y = []string{rs.Columns[1]}
		} else if len(rs.Columns) == 1 {
			spec.Y = []string{rs.Columns[0]}
		}
	}

	if spec.Title == "" {
		if len(spec.Y) == 1 && spec.X != "" {
			spec.Title = spec.Y[0] + " by " + spec.X
		} else {
			spec.Title = "Data Visualization"
		}
	}

	columns := make(map[string]bool, len(rs.Columns))
	for _, c := range rs.Columns {
		columns[c] = true
	}

	if spec.X != "" && !columns[spec.X] {
		return nil, apperrors.Newf(apperrors.ErrTypeVisualization,
			"chart code references unknown column: %s", spec.X)
	}

	for _, y := range spec.Y {
		if !columns[y] {
			return nil, apperrors.Newf(apperrors.ErrTypeVisualization,
				"chart code references unknown column: %s", y)
		}
	}

	return spec, nil
}

// parseKwargs extracts string and string-list keyword arguments from a call
// argument list. Non-literal values (variables, f-strings) are skipped.
func parseKwargs(args string) (map[string]string, map[string][]string) {
	kwargs := make(map[string]string)
	lists := make(map[string][]string)

	for _, m := range kwargStr.FindAllStringSubmatch(args, -1) {
		if _, exists := kwargs[m[1]]; !exists {
			kwargs[m[1]] = m[2]
		}
	}

	for _, m := range kwargList.FindAllStringSubmatch(args, -1) {
		var items []string
		for _, item := range quotedItem.FindAllStringSubmatch(m[2], -1) {
			items = append(items, item[1])
		}

		if len(items) > 0 {
			lists[m[1]] = items
		}
	}

	return kwargs, lists
}

func firstOf(kwargs map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := kwargs[k]; v != "" {
			return v
		}
	}

	return ""
}
