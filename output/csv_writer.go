package output

import (
	"blib/billings"
	"encoding/csv"
	"fmt"
	"os"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, rows []billings.EntryRow) error {
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, entryValues(row))
	}
	return writeCSVTable(path, entryHeaders, table)
}

func writeCSVTable(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	// WriteAll flushes and reports any write error.
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
