package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/rolld/sales-assistant/internal/errors"
	"github.com/rolld/sales-assistant/internal/warehouse"
)

var checkPing bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify warehouse and completion-service configuration",
	Long: `Report which warehouse and completion-service settings are present.
Missing completion credentials are not fatal (a canned sample query is
substituted) but missing warehouse credentials block every question.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkPing, "ping", false,
		"Run a probe query against the warehouse")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("Warehouse driver: %s\n", cfg.Warehouse.Driver)

	missingWarehouse := cfg.MissingWarehouseCredentials()

	switch {
	case strings.EqualFold(cfg.Warehouse.Driver, "duckdb"):
		fmt.Printf("Warehouse: local database at %s\n", cfg.Warehouse.LocalPath)
	case len(missingWarehouse) > 0:
		fmt.Printf("Warehouse: NOT configured (missing %s)\n",
			strings.Join(missingWarehouse, ", "))
	default:
		fmt.Printf("Warehouse: configured (%s)\n", cfg.Warehouse.ServerHostname)
	}

	if missingCompletion := cfg.MissingCompletionCredentials(); len(missingCompletion) > 0 {
		fmt.Printf("Completion service: NOT configured (missing %s); sample queries will be used\n",
			strings.Join(missingCompletion, ", "))
	} else {
		fmt.Printf("Completion service: configured (deployment %s)\n",
			cfg.Completion.DeploymentName)
	}

	if !checkPing {
		return nil
	}

	if len(missingWarehouse) > 0 {
		return apperrors.New(apperrors.ErrTypeConfig,
			"cannot ping the warehouse without credentials").
			WithDetail(strings.Join(missingWarehouse, ", ") + " not set")
	}

	executor, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer executor.Close()

	if _, err := executor.Execute(cmd.Context(), "SELECT 1"); err != nil {
		return err
	}

	fmt.Println("Warehouse probe query succeeded.")

	return nil
}
