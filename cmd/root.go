/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"blib/config"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dbPath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blib",
	Short: "Read a Billings database and announce time slip activity to a chat.",
	Long: `
**********************************************
*          BILLINGS ACTIVITY BRIDGE          *
**********************************************

This CLI reads the SQLite database of the Billings time-tracking application,
lists and exports time slips and entries per client, and runs a bridge that
posts "now working on" / "no longer working on" messages to a chat whenever
a time slip starts or stops being timed.

The Billings database is opened read-only unless a command needs to write.
`,
	Example: `
  # Create configuration file
  blib config create

  # Announce activity for client "Acme" to the Adium chat "Team"
  blib bridge -c Acme -d Team

  # Poll every two minutes and only print what would be sent
  blib bridge -c Acme -i 120 --dry-run

  # List clients and the time slips the bridge watches
  blib clients
  blib slips list -c Acme

  # Export all time entries of a client
  blib export -c Acme --output ./acme.xlsx

  # Inspect the database schema
  blib tables TimeEntry
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal: requiresConfig refers to
	// rootCmd, which would otherwise form an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}

	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.blib.yaml, then ./.blib.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the Billings database (default: database.path from config, then the Billings application data folder)")
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch strings.TrimPrefix(cmd.CommandPath(), rootCmd.Name()+" ") {
	case "bridge", "clients", "export", "slips list", "slips show", "slips timing", "tables":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".blib" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".blib")
	}

	// BLIB_BRIDGE_CLIENT overrides bridge.client, and so on.
	viper.SetEnvPrefix("blib")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: blib config create")
	}
}
