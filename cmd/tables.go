package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rolld/sales-assistant/internal/catalog"
)

var tablesNamesOnly bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the warehouse schema catalog",
	Long: `Print every table the assistant knows about, with column names and types.
Questions can only be answered from these tables.`,
	Args: cobra.NoArgs,
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesNamesOnly, "names", false, "Print table names only")

	rootCmd.AddCommand(tablesCmd)
}

func runTables(_ *cobra.Command, _ []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return err
	}

	names := cat.TableNames()

	if tablesNamesOnly {
		for _, name := range names {
			fmt.Println(name)
		}

		return nil
	}

	fmt.Printf("%d tables\n\n", len(names))
	fmt.Print(cat.Render())

	return nil
}
