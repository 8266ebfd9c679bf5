package output

import (
	"blib/billings"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Writer interface {
	Write(path string, rows []billings.EntryRow) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var entryHeaders = []string{"Client", "Project", "TimeSlip", "Start", "End", "DurationMinutes", "Running"}

func entryValues(row billings.EntryRow) []string {
	end := ""
	if row.End.Valid {
		end = row.End.Time.Format(time.RFC3339)
	}
	return []string{
		row.Client,
		row.Project,
		row.TimeSlip,
		row.Start.Format(time.RFC3339),
		end,
		strconv.Itoa(int(row.Duration().Minutes())),
		strconv.FormatBool(!row.End.Valid),
	}
}
