package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rolld/sales-assistant/internal/config"
	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/logging"
)

var (
	rootDriver   string
	rootLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "sales-assistant",
	Short: "Ask the retail sales warehouse questions in plain English",
	Long: `sales-assistant turns a business question into a SQL query via a completion
service, runs it against the sales warehouse, and renders the result as a
table and an optional chart.

Questions are matched against the retail schema first; a question that
matches no tables is rejected before any completion call is made.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(os.Stderr, err)
	}

	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDriver, "driver", "",
		"Warehouse driver: databricks or duckdb")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "",
		"Log level: debug, info, warn, or error")
}

// loadConfig builds the active configuration from file, environment, and
// persistent flags, then initializes the global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithOverrides(map[string]interface{}{
		"driver":    rootDriver,
		"log-level": rootLogLevel,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTypeConfig, "failed to load configuration")
	}

	cfg.ExpandAllPaths()

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrTypeConfig, "failed to initialize logging")
	}

	return cfg, nil
}

// printError writes an error with its technical detail and suggestions.
func printError(w io.Writer, err error) {
	var structErr *apperrors.Error
	if !errors.As(err, &structErr) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", structErr.Message)

	if structErr.Detail != "" {
		fmt.Fprintf(w, "Detail: %s\n", structErr.Detail)
	}

	for _, suggestion := range structErr.Suggestions {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}
}
