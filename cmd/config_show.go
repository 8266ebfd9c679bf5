package cmd

import (
	"blib/config"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  blib config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults and environment values.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("%s: %s\n", config.KeyDatabasePath, displayOrDefault(cfg.Database.Path, "(Billings default location)"))
		fmt.Printf("%s: %s\n", config.KeyDatabaseEpoch, cfg.Database.Epoch)
		fmt.Printf("%s: %s\n", config.KeyBridgeClient, cfg.Bridge.Client)
		fmt.Printf("%s: %s\n", config.KeyBridgeDestination, cfg.Bridge.Destination)
		fmt.Printf("%s: %d\n", config.KeyBridgeInterval, cfg.Bridge.Interval)
		fmt.Printf("%s: %s\n", config.KeyBridgeActor, cfg.Bridge.Actor)
		fmt.Printf("%s: %s\n", config.KeyNotifierKind, cfg.Notifier.Kind)
		fmt.Printf("%s: %s\n", config.KeyNotifierWebhookURL, cfg.Notifier.WebhookURL)
		fmt.Printf("%s: %d\n", config.KeyRetryAttempts, cfg.Retry.Attempts)
		fmt.Printf("%s: %s\n", config.KeyRetryInitialBackoff, cfg.Retry.InitialBackoff)
		fmt.Printf("%s: %s\n", config.KeyRetryMaxBackoff, cfg.Retry.MaxBackoff)
		fmt.Printf("%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
		fmt.Printf("%s: %s\n", config.KeyLogFile, displayOrDefault(cfg.Log.File, "(stderr)"))
		fmt.Printf("%s: %d\n", config.KeyLogMaxSizeMB, cfg.Log.MaxSizeMB)
		fmt.Printf("%s: %d\n", config.KeyLogMaxBackups, cfg.Log.MaxBackups)
	},
}

func displayOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
