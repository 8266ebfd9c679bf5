package cmd

import (
	"blib/config"
	"blib/storage"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [TABLE]",
	Short: "List the tables of the Billings database or the columns of one table.",
	Example: `
  # List all tables
  blib tables

  # Show the columns of TimeEntry
  blib tables TimeEntry
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		store, err := openStore(cfg, false)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 0 {
			names, err := store.TableNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		columns, err := store.Columns(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printColumns(cmd.OutOrStdout(), columns)
	},
}

func printColumns(out io.Writer, columns []storage.Column) error {
	for _, column := range columns {
		flags := ""
		if column.PrimaryKey {
			flags += " PRIMARY KEY"
		}
		if column.NotNull {
			flags += " NOT NULL"
		}
		columnType := column.Type
		if columnType == "" {
			columnType = "(untyped)"
		}
		if _, err := fmt.Fprintf(out, "%-28s %s%s\n", column.Name, columnType, flags); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
