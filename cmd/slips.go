package cmd

import (
	"blib/billings"
	"blib/config"
	"blib/storage"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	slipsClient    string
	slipsTimingID  int64
	slipsTimingOn  bool
	slipsTimingOff bool
	slipsTimingYes bool
	slipsShowID    int64
)

var slipsCmd = &cobra.Command{
	Use:   "slips",
	Short: "Inspect and adjust Billings time slips.",
}

var slipsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the time slips the bridge watches for a client.",
	Long: `List the time slips of a client that are enabled for timing and not private,
with their project, entry count and the end of their latest entry.`,
	Example: `
  # List watched slips of client "Acme"
  blib slips list -c Acme
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		client := firstNonEmpty(slipsClient, cfg.Bridge.Client)
		if client == "" {
			return fmt.Errorf("client is required: pass --client or set %s", config.KeyBridgeClient)
		}

		logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		store, err := openStore(cfg, false)
		if err != nil {
			return err
		}
		defer store.Close()

		if _, found, err := store.ClientByCompany(cmd.Context(), client); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("client %q not found", client)
		}

		result, err := store.ClientTimeSlips(cmd.Context(), client)
		if err != nil {
			return err
		}
		logSkipped(logger, result.Skipped)

		return printSlips(cmd.OutOrStdout(), result.Slips)
	},
}

var slipsTimingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Enable or disable timing for a time slip.",
	Long: `Set the "active for timing" flag of one time slip. Only slips with the flag set
are watched by the bridge.

This is the only command that writes to the Billings database. Quit Billings
before using it. An interactive prompt requires typing exactly "Y" unless --yes is given.`,
	Example: `
  # Stop offering slip 42 for timing
  blib slips timing --id 42 --off
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if slipsTimingOn == slipsTimingOff {
			return errors.New("exactly one of --on or --off is required")
		}

		state := "disabled"
		verb := "Disable"
		if slipsTimingOn {
			state = "enabled"
			verb = "Enable"
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		store, err := openStore(cfg, true)
		if err != nil {
			return err
		}
		defer store.Close()

		slip, found, err := store.TimeSlip(cmd.Context(), slipsTimingID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("time slip %d: %w", slipsTimingID, storage.ErrTimeSlipNotFound)
		}
		if slip.Private() && slipsTimingOn {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: time slip %d is private and stays hidden from the bridge.\n", slip.ID)
		}

		if !slipsTimingYes {
			question := fmt.Sprintf("%s timing for time slip %d (%s: %s)?", verb, slip.ID, slip.Project.DisplayName(), slip.Name)
			confirmed, err := confirmPrompt(confirmInput, confirmOutput, question)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("timing change aborted: confirmation was not 'Y'")
			}
		}

		if err := store.SetActiveForTiming(cmd.Context(), slip.ID, slipsTimingOn); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Timing %s for time slip %d.\n", state, slipsTimingID)
		return nil
	},
}

var slipsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one time slip with its entries.",
	Long: `Show a time slip by row id, including private slips and slips not enabled
for timing, together with all of its entries in creation order.`,
	Example: `
  # Show slip 42
  blib slips show --id 42
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

		slip, found, err := store.TimeSlip(cmd.Context(), slipsShowID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("time slip %d: %w", slipsShowID, storage.ErrTimeSlipNotFound)
		}
		return printSlipDetail(cmd.OutOrStdout(), slip)
	},
}

func printSlipDetail(out io.Writer, slip billings.TimeSlip) error {
	project := slip.Project.DisplayName()
	if project != slip.Project.Name {
		project = fmt.Sprintf("%s (%s)", project, slip.Project.Name)
	}
	timing := "disabled"
	if slip.ActiveForTiming {
		timing = "enabled"
	}
	private := "no"
	if slip.Private() {
		private = "yes"
	}

	if _, err := fmt.Fprintf(out, "Time slip %d: %s\nProject: %s\nTiming:  %s\nPrivate: %s\nEntries: %d\n",
		slip.ID, slip.Name, project, timing, private, len(slip.Entries)); err != nil {
		return err
	}
	for _, entry := range slip.Entries {
		duration := "running"
		if entry.End.Valid {
			duration = fmt.Sprintf("%.0fm", entry.Duration().Minutes())
		}
		if _, err := fmt.Fprintf(out, "  %6d  %s -> %s  %s\n",
			entry.ID, entry.Start.Format(time.RFC3339), entry.End, duration); err != nil {
			return err
		}
	}
	return nil
}

func printSlips(out io.Writer, slips []billings.TimeSlip) error {
	if len(slips) == 0 {
		_, err := fmt.Fprintln(out, "No time slips enabled for timing.")
		return err
	}

	for _, slip := range slips {
		lastEnd := "no entries"
		if end, ok := slip.LastEnd(); ok {
			lastEnd = end.String()
		}
		if _, err := fmt.Fprintf(out, "%6d  %-24s %-32s entries=%-4d last=%s\n",
			slip.ID,
			truncate(slip.Project.DisplayName(), 24),
			truncate(slip.Name, 32),
			len(slip.Entries),
			lastEnd,
		); err != nil {
			return err
		}
	}
	return nil
}

func truncate(value string, max int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	rootCmd.AddCommand(slipsCmd)
	slipsCmd.AddCommand(slipsListCmd)
	slipsCmd.AddCommand(slipsTimingCmd)
	slipsCmd.AddCommand(slipsShowCmd)

	slipsListCmd.Flags().StringVarP(&slipsClient, "client", "c", "", "Billings client company name (default: bridge.client)")

	slipsTimingCmd.Flags().Int64Var(&slipsTimingID, "id", 0, "Time slip row id")
	slipsTimingCmd.Flags().BoolVar(&slipsTimingOn, "on", false, "Enable timing")
	slipsTimingCmd.Flags().BoolVar(&slipsTimingOff, "off", false, "Disable timing")
	slipsTimingCmd.Flags().BoolVarP(&slipsTimingYes, "yes", "y", false, "Skip the confirmation prompt")

	_ = slipsTimingCmd.MarkFlagRequired("id")

	slipsShowCmd.Flags().Int64Var(&slipsShowID, "id", 0, "Time slip row id")
	_ = slipsShowCmd.MarkFlagRequired("id")
}
