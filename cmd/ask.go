package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/rolld/sales-assistant/internal/catalog"
	"github.com/rolld/sales-assistant/internal/config"
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/llm"
	"github.com/rolld/sales-assistant/internal/logging"
	"github.com/rolld/sales-assistant/internal/pipeline"
	"github.com/rolld/sales-assistant/internal/prompt"
	"github.com/rolld/sales-assistant/internal/relevance"
	"github.com/rolld/sales-assistant/internal/viz"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

var (
	askMode       string
	askPolicy     string
	askChartOut   string
	askCSVOut     string
	askShowPrompt bool
	askExamples   bool
)

// exampleQuestions are ready-made questions covering the main query shapes
// the schema supports.
var exampleQuestions = []string{
	"Show me the daily sales for all stores in the last 7 days",
	"What are the top 10 selling items this month?",
	"Compare store performance by net sales for the current month",
	"Show me inventory movement by product category last quarter",
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a business question with a warehouse query and chart",
	Long: `Ask a question about the sales data in plain English. The question is
matched against the schema, turned into SQL by the completion service, run
against the warehouse, and the result printed as a table. In viz mode a chart
is also written as an HTML file.

Examples:
  sales-assistant ask "Show me net sales by store last month"
  sales-assistant ask --mode sql "What are the top 10 selling items this month?"
  sales-assistant ask --csv-out sales.csv "Compare store performance by net sales"
  sales-assistant ask --examples`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "viz", "Output mode: sql or viz")
	askCmd.Flags().StringVar(&askPolicy, "policy", "keyword",
		"Table relevance policy: keyword or substring")
	askCmd.Flags().StringVar(&askChartOut, "chart-out", "",
		"Chart HTML output path (default: chart output directory from config)")
	askCmd.Flags().StringVar(&askCSVOut, "csv-out", "", "Write the result rows to a CSV file")
	askCmd.Flags().BoolVar(&askShowPrompt, "show-prompt", false,
		"Print the composed completion prompt")
	askCmd.Flags().BoolVar(&askExamples, "examples", false, "List example questions and exit")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askExamples {
		fmt.Println("Example questions:")

		for _, q := range exampleQuestions {
			fmt.Printf("  - %s\n", q)
		}

		return nil
	}

	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return apperrors.New(apperrors.ErrTypeValidation,
			"a question is required (or use --examples to list ready-made ones)")
	}

	mode := prompt.Mode(askMode)
	if !mode.Valid() {
		return apperrors.Newf(apperrors.ErrTypeValidation,
			"invalid mode %q (must be sql or viz)", askMode)
	}

	policy, ok := relevance.ForName(askPolicy)
	if !ok {
		return apperrors.Newf(apperrors.ErrTypeValidation,
			"invalid policy %q (must be keyword or substring)", askPolicy)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	executor, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer executor.Close()

	p := &pipeline.Pipeline{
		Catalog:  cat,
		Policy:   policy,
		Service:  completionService(cfg),
		Executor: executor,
	}

	req := pipeline.NewRequest(args[0], mode)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr))
	spin.Suffix = " Working on your question..."
	spin.Start()

	outcome, runErr := p.Run(cmd.Context(), req)

	spin.Stop()

	// Print whatever stages completed so a failing query still shows the
	// tables that were selected and the SQL that was attempted.
	printSelectedTables(outcome.SelectedTables)

	if askShowPrompt && outcome.Prompt != "" {
		fmt.Println("Prompt:")
		fmt.Println(outcome.Prompt)
		fmt.Println()
	}

	if outcome.SQL != "" {
		fmt.Println("SQL:")
		fmt.Println(outcome.SQL)
		fmt.Println()
	}

	if runErr != nil {
		return runErr
	}

	renderResultTable(os.Stdout, outcome.Result)

	for _, warning := range outcome.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}

	if askCSVOut != "" {
		if err := writeCSVFile(outcome.Result, askCSVOut); err != nil {
			return err
		}

		fmt.Printf("Result written to %s\n", askCSVOut)
	}

	if outcome.Chart != nil {
		path := chartOutputPath(cfg, req, askChartOut)
		if err := viz.RenderHTML(outcome.Chart, path); err != nil {
			return err
		}

		fmt.Printf("%s chart written to %s\n", outcome.Chart.Spec.Type, path)
	}

	return nil
}

// completionService returns the configured client, or the canned fallback
// when credentials are absent so the pipeline can still run.
func completionService(cfg *config.Config) llm.Service {
	if missing := cfg.MissingCompletionCredentials(); len(missing) > 0 {
		logging.WithField("missing", strings.Join(missing, ", ")).
			Warn("completion service not configured, using canned fallback")
		fmt.Fprintf(os.Stderr, "Note: completion service not configured (%s); a sample query will be used.\n",
			strings.Join(missing, ", "))

		return llm.NewFallbackService(llm.ReasonNotConfigured)
	}

	timeout, err := time.ParseDuration(cfg.Completion.Timeout)
	if err != nil {
		timeout = llm.DefaultTimeout
	}

	client, err := llm.NewClient(llm.Config{
		Endpoint:       cfg.Completion.Endpoint,
		APIKey:         cfg.Completion.APIKey,
		DeploymentName: cfg.Completion.DeploymentName,
		APIVersion:     cfg.Completion.APIVersion,
		Timeout:        timeout,
		MaxTokens:      cfg.Completion.MaxTokens,
	})
	if err != nil {
		logging.WithError(err).Warn("completion client setup failed, using canned fallback")

		return llm.NewFallbackService(llm.ReasonNotConfigured)
	}

	return client
}

func printSelectedTables(selected []string) {
	if len(selected) == 0 {
		return
	}

	fmt.Println("Relevant tables:")

	for _, table := range selected {
		fmt.Printf("  - %s\n", prompt.Describe(table))
	}

	fmt.Println()
}

// renderResultTable prints the result set as a fixed-width text table.
func renderResultTable(w io.Writer, rs *warehouse.ResultSet) {
	if rs == nil || len(rs.Columns) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}

	widths := make([]int, len(rs.Columns))
	for i, col := range rs.Columns {
		widths[i] = len(col)
	}

	cells := make([][]string, len(rs.Rows))

	for r, row := range rs.Rows {
		cells[r] = make([]string, len(rs.Columns))

		for i := range rs.Columns {
			var text string
			if i < len(row) {
				text = warehouse.CellString(row[i])
			}

			cells[r][i] = text

			if len(text) > widths[i] {
				widths[i] = len(text)
			}
		}
	}

	writeRow := func(values []string) {
		for i, v := range values {
			fmt.Fprintf(w, "%-*s", widths[i], v)

			if i < len(values)-1 {
				fmt.Fprint(w, "  ")
			}
		}

		fmt.Fprintln(w)
	}

	writeRow(rs.Columns)

	separators := make([]string, len(rs.Columns))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}

	writeRow(separators)

	for _, row := range cells {
		writeRow(row)
	}

	fmt.Fprintf(w, "(%d rows)\n", rs.RowCount())
}

func writeCSVFile(rs *warehouse.ResultSet, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrTypeInternal,
			"failed to create CSV file %s", path)
	}
	defer f.Close()

	return rs.WriteCSV(f)
}

// chartOutputPath resolves where the chart artifact is written. An explicit
// flag wins; otherwise the file lands in the configured chart directory with
// the request ID in its name.
func chartOutputPath(cfg *config.Config, req pipeline.Request, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return filepath.Join(cfg.Chart.OutputDir, fmt.Sprintf("chart-%s.html", req.ID))
}
