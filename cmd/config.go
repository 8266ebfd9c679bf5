package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage blib configuration file values.",
	Long: `Create, edit, display, and delete the blib configuration file.

The configuration stores application-wide values:
- database.path / database.epoch
- bridge.client / bridge.destination / bridge.interval / bridge.actor
- notifier.kind / notifier.webhook_url
- retry.attempts / retry.initial_backoff / retry.max_backoff
- log.level / log.file / log.max_size_mb / log.max_backups`,
	Example: `
  # Create default config in $HOME/.blib.yaml
  blib config create

  # Show active config and source file
  blib config show

  # Open active config in editor (creates example if missing)
  blib config edit

  # Delete active config file
  blib config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
