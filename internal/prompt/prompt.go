// Package prompt composes the messages sent to the completion service. The
// composition is pure string assembly in a fixed order so the same question
// and table selection always produce byte-identical prompts.
package prompt

import (
	"strings"

	"github.com/rolld/sales-assistant/internal/catalog"
)

// Mode selects what the completion should produce.
type Mode string

const (
	// ModeSQL asks for a SQL query only.
	ModeSQL Mode = "sql"
	// ModeVisualization asks for a SQL query plus chart construction code.
	ModeVisualization Mode = "viz"
)

// Valid reports whether the mode is one of the known values.
func (m Mode) Valid() bool {
	return m == ModeSQL || m == ModeVisualization
}

// SystemPrompt is the fixed system instruction for every completion call.
const SystemPrompt = `You are an expert data analyst who writes correct and efficient SQL queries and creates beautiful visualizations.
IMPORTANT:
- Only use tables that exist in the schema
- Validate all table and column names against the schema
- Always start SQL queries with 'USE sales;'
- For date formatting, use 'yyyy-MM-dd' instead of '%Y-%m-%d'
- For month formatting, use 'yyyy-MM' instead of '%Y-%m'
- For year formatting, use 'yyyy' instead of '%Y'
- For date intervals, use date_sub(current_date(), n) where n is the number of days
- Use >= instead of ≥ for greater than or equal to
- Use <= instead of ≤ for less than or equal to
- For visualizations:
  - Use only pandas and plotly
  - Work with the dataframe 'df' that contains the SQL query results
  - Do not try to connect to the database directly
  - Create visualizations using the data in the dataframe
- Do not use any Databricks-specific libraries
- Always include proper error handling and data validation`

const visualizationInstructions = `Generate both SQL query and Python visualization code using Plotly.
The visualization code should use pandas and plotly only, with clear comments.

IMPORTANT:
- Only use tables that exist in the schema
- Validate all table and column names against the schema
- Always start the SQL query with 'USE sales;'
- For date formatting, use 'yyyy-MM-dd' instead of '%Y-%m-%d'
- For month formatting, use 'yyyy-MM' instead of '%Y-%m'
- For year formatting, use 'yyyy' instead of '%Y'
- For date intervals, use date_sub(current_date(), n) where n is the number of days
- Use >= instead of ≥ for greater than or equal to
- Use <= instead of ≤ for less than or equal to
- For visualizations:
  - Use only pandas and plotly
  - Work with the dataframe 'df' that contains the SQL query results
  - Do not try to connect to the database directly
  - Create visualizations using the data in the dataframe
- Do not use any Databricks-specific libraries

Format the response as follows:

` + "```sql" + `
USE sales;
[SQL QUERY HERE]
` + "```" + `

` + "```python" + `
# Visualization code using pandas and plotly
[PYTHON CODE HERE]
` + "```"

const sqlOnlyInstructions = `Generate SQL query only. IMPORTANT: Only use the tables identified in the analysis above. Always start the SQL query with USE sales;`

// TableAnalysis renders the selected-tables report included in the prompt.
// Each selected table appears as its schema header line. An empty selection
// yields a rephrase hint instead of a table list.
func TableAnalysis(selected []string, cat *catalog.Catalog) string {
	if len(selected) == 0 {
		return "No relevant tables found for your question. Please try rephrasing your question using the available tables."
	}

	var b strings.Builder

	b.WriteString("These tables contain data relevant to your question:\n\n")

	for _, table := range selected {
		if line := cat.SchemaLine(table); line != "" {
			b.WriteString("- " + line + "\n")
		}
	}

	return b.String()
}

// Describe returns the human-readable one-line description for a table name.
func Describe(table string) string {
	return table + ": Contains data about " + strings.ReplaceAll(strings.ToLower(table), "_", " ")
}

// Compose builds the user prompt for a question. The sections appear in a
// fixed order: preamble, full schema, question, table analysis, then the
// mode-specific instruction block.
func Compose(question string, selected []string, mode Mode, cat *catalog.Catalog) string {
	instructions := sqlOnlyInstructions
	if mode == ModeVisualization {
		instructions = visualizationInstructions
	}

	var b strings.Builder

	b.WriteString("You are a helpful assistant that converts business questions into SQL queries and Python visualization code.\n")
	b.WriteString("IMPORTANT: Only use tables and columns from the schema below. Do not assume or create any tables or columns.\n")
	b.WriteString("\nSchema:\n")
	b.WriteString(cat.Render())
	b.WriteString("\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nTable Analysis:\n")
	b.WriteString(TableAnalysis(selected, cat))
	b.WriteString("\n\n")
	b.WriteString(instructions)
	b.WriteString(":")

	return b.String()
}
