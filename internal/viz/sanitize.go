package viz

import (
	"regexp"
	"strings"

	apperrors "github.com/rolld/sales-assistant/internal/errors"
)

const maxCodeLength = 50000

// forbiddenPatterns screens generated code before interpretation. The
// interpreter never executes anything, so this is belt-and-braces: code that
// reaches for the system is rejected outright instead of silently losing the
// offending call.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`os\.system\s*\(`),
	regexp.MustCompile(`subprocess\.`),
	regexp.MustCompile(`os\.popen\s*\(`),
	regexp.MustCompile(`os\.exec`),
	regexp.MustCompile(`os\.remove\s*\(`),
	regexp.MustCompile(`shutil\.`),
	regexp.MustCompile(`requests\.`),
	regexp.MustCompile(`urllib\.`),
	regexp.MustCompile(`socket\.`),
	regexp.MustCompile(`exec\s*\(`),
	regexp.MustCompile(`eval\s*\(`),
	regexp.MustCompile(`compile\s*\(`),
	regexp.MustCompile(`__import__\s*\(`),
	regexp.MustCompile(`pickle\.loads`),
	regexp.MustCompile(`open\s*\(`),
}

// Textual substitutions applied before interpretation. Display calls are
// dropped, cluster-only imports are stripped, and direct database access is
// rebound to the pre-loaded result dataframe.
var substitutions = []struct {
	from string
	to   string
}{
	{"fig.show()", ""},
	{"from pyspark.sql import *", ""},
	{"from pyspark import *", ""},
	{"import pyspark", ""},
	{"from databricks.koalas import *", ""},
	{"import databricks.koalas", ""},
	{"import koalas", ""},
	{"koalas.DataFrame", "pd.DataFrame"},
	{"koalas.Series", "pd.Series"},
	{"connection.execute", "df"},
	{"cursor.execute", "df"},
	{"pd.read_sql", "df"},
}

// Sanitize screens and rewrites generated chart code. It returns a
// visualization error when the code matches a forbidden pattern or exceeds
// the size limit.
func Sanitize(code string) (string, error) {
	if len(code) > maxCodeLength {
		return "", apperrors.New(apperrors.ErrTypeVisualization,
			"generated chart code exceeds the size limit")
	}

	for _, pattern := range forbiddenPatterns {
		if pattern.MatchString(code) {
			return "", apperrors.Newf(apperrors.ErrTypeVisualization,
				"generated chart code contains a forbidden pattern: %s", pattern.String())
		}
	}

	out := code
	for _, s := range substitutions {
		out = strings.ReplaceAll(out, s.from, s.to)
	}

	return out, nil
}
