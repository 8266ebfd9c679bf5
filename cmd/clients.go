package cmd

import (
	"blib/billings"
	"blib/config"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List the clients in the Billings database.",
	Long: `List the clients of the Billings database by company name. The company name
is what --client and bridge.client expect.`,
	Example: `
  # List all clients
  blib clients
`,
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

		clients, err := store.ListClients(cmd.Context())
		if err != nil {
			return err
		}
		return printClients(cmd.OutOrStdout(), clients)
	},
}

func printClients(out io.Writer, clients []billings.Client) error {
	if len(clients) == 0 {
		_, err := fmt.Fprintln(out, "No clients found.")
		return err
	}
	for _, client := range clients {
		if _, err := fmt.Fprintf(out, "%6d  %s\n", client.ID, client.Company); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(clientsCmd)
}
