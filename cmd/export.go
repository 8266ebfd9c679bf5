package cmd

import (
	"blib/config"
	"blib/output"
	"blib/storage"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportClient string
	exportFormat string
	exportMode   string
	exportOutput string
	exportSince  string
	exportUntil  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the time entries of a client to CSV/Excel",
	Long: `Export the time entries of a client from the Billings database.

All entries of the client's non-private time slips are exported, whether or not
the slip is currently enabled for timing.

Modes:
- raw: export each time entry with client, project and slip
- daily: export per-day aggregates (first start, last end, worked hours, break hours)

Running entries have an empty end in raw mode and are left out of daily totals.
--since and --until (YYYY-MM-DD, local time, both inclusive) limit entries by start day.

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw entries to CSV
  blib export -c Acme --output ./acme.csv

  # Export raw entries to Excel
  blib export -c Acme --output ./acme.xlsx

  # Export daily summary to CSV
  blib export -c Acme --mode daily --output ./acme-daily.csv

  # Export March 2026 only
  blib export -c Acme --since 2026-03-01 --until 2026-03-31 --output ./acme-march.csv

  # Force Excel format independent of extension
  blib export -c Acme --mode daily --format excel --output ./acme-daily.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		client := firstNonEmpty(exportClient, cfg.Bridge.Client)
		if client == "" {
			return fmt.Errorf("client is required: pass --client or set %s", config.KeyBridgeClient)
		}

		period, err := parseExportRange(exportSince, exportUntil)
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
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

		entries, skipped, err := store.EntryRows(cmd.Context(), client, period)
		if err != nil {
			return err
		}
		logSkipped(logger, skipped)

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			summaries := output.BuildDailySummaries(entries)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

// parseExportRange turns inclusive local start days into an entry range.
func parseExportRange(since, until string) (storage.EntryRange, error) {
	var period storage.EntryRange
	if value := strings.TrimSpace(since); value != "" {
		day, err := time.ParseInLocation("2006-01-02", value, time.Local)
		if err != nil {
			return storage.EntryRange{}, fmt.Errorf("invalid --since %q (expected YYYY-MM-DD): %w", since, err)
		}
		period.From = day
	}
	if value := strings.TrimSpace(until); value != "" {
		day, err := time.ParseInLocation("2006-01-02", value, time.Local)
		if err != nil {
			return storage.EntryRange{}, fmt.Errorf("invalid --until %q (expected YYYY-MM-DD): %w", until, err)
		}
		period.To = day.AddDate(0, 0, 1)
	}
	if !period.From.IsZero() && !period.To.IsZero() && !period.To.After(period.From) {
		return storage.EntryRange{}, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return period, nil
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportClient, "client", "c", "", "Billings client company name (default: bridge.client)")
	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "First start day to export (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "Last start day to export (YYYY-MM-DD)")

	_ = exportCmd.MarkFlagRequired("output")
}
