package cmd

import (
	"blib/config"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

The template lists every key with its default: database.path and database.epoch,
bridge.client, bridge.destination, bridge.interval and bridge.actor, notifier.kind
and notifier.webhook_url, the retry.* backoff settings and the log.* settings.
Fill in at least bridge.client and bridge.destination before running "blib bridge".

If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.blib.yaml
  blib config create

  # Create a config next to a copied Billings database
  blib --configFile ./.blib.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		fmt.Printf("Set %s and %s, then run: blib bridge\n", config.KeyBridgeClient, config.KeyBridgeDestination)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
