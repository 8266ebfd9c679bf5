package cmd

import (
	"blib/config"
	"blib/internal/logging"
	"blib/internal/timeutil"
	"blib/storage"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// resolveDatabasePath picks the --db flag, then database.path, then the
// location Billings itself uses.
func resolveDatabasePath(flagValue, configValue string) (string, error) {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path, nil
	}
	if path := strings.TrimSpace(configValue); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return storage.DefaultDatabasePath(home), nil
}

func openStore(cfg *config.Config, writable bool) (*storage.BillingsStore, error) {
	path, err := resolveDatabasePath(dbPath, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	epoch, err := timeutil.ParseEpoch(cfg.Database.Epoch)
	if err != nil {
		return nil, err
	}
	return storage.OpenBillings(path, storage.Options{Epoch: epoch, Writable: writable})
}

func newLogger(cfg *config.Config, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}, fallback)
}

func logSkipped(logger *slog.Logger, skipped []storage.SkippedRecord) {
	for _, record := range skipped {
		logger.Warn("skipping malformed record",
			slog.String("table", record.Table),
			slog.Int64("id", record.ID),
			slog.String("reason", record.Reason),
		)
	}
}
