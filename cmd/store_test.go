package cmd

import (
	"path/filepath"
	"testing"
)

func TestResolveDatabasePath(t *testing.T) {
	t.Run("uses flag first", func(t *testing.T) {
		got, err := resolveDatabasePath("./flag.bid", "/config/billings.bid")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "./flag.bid" {
			t.Fatalf("expected flag path, got %q", got)
		}
	})

	t.Run("uses config when flag is empty", func(t *testing.T) {
		got, err := resolveDatabasePath(" ", "/config/billings.bid")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/config/billings.bid" {
			t.Fatalf("expected config path, got %q", got)
		}
	})

	t.Run("falls back to Billings default location", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		got, err := resolveDatabasePath("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(home, "Library", "Application Support", "Billings", "Database", "billings.bid")
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})
}
