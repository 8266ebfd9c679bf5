package output

import (
	"blib/billings"
	"blib/internal/timeutil"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

type DailySummary struct {
	Date          string
	StartDateTime time.Time
	EndDateTime   time.Time
	WorkedHours   float64
	BreakHours    float64
	EntryCount    int
}

type interval struct {
	start time.Time
	end   time.Time
}

var dailyHeaders = []string{"Date", "StartTime", "EndTime", "WorkedHours", "BreakHours", "EntryCount"}

// BuildDailySummaries groups finished entries by local start day. Running
// entries have no end yet and are left out.
func BuildDailySummaries(rows []billings.EntryRow) []DailySummary {
	byDay := make(map[string][]billings.EntryRow)
	for _, row := range rows {
		if !row.End.Valid {
			continue
		}
		day := timeutil.DayKey(row.Start)
		byDay[day] = append(byDay[day], row)
	}
	if len(byDay) == 0 {
		return []DailySummary{}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day]))
	}
	return summaries
}

func summarizeDay(day string, rows []billings.EntryRow) DailySummary {
	start := rows[0].Start
	end := rows[0].End.Time
	worked := time.Duration(0)
	intervals := make([]interval, 0, len(rows))

	for _, row := range rows {
		if row.Start.Before(start) {
			start = row.Start
		}
		if row.End.Time.After(end) {
			end = row.End.Time
		}
		worked += row.Duration()
		intervals = append(intervals, interval{start: row.Start, end: row.End.Time})
	}
	if end.Before(start) {
		end = start
	}

	breakDuration := end.Sub(start) - mergedCoverage(intervals)
	if breakDuration < 0 {
		breakDuration = 0
	}

	return DailySummary{
		Date:          day,
		StartDateTime: start,
		EndDateTime:   end,
		WorkedHours:   roundHours(worked.Hours()),
		BreakHours:    roundHours(breakDuration.Hours()),
		EntryCount:    len(rows),
	}
}

func mergedCoverage(intervals []interval) time.Duration {
	valid := make([]interval, 0, len(intervals))
	for _, candidate := range intervals {
		if candidate.end.After(candidate.start) {
			valid = append(valid, candidate)
		}
	}
	if len(valid) == 0 {
		return 0
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].start.Before(valid[j].start)
	})

	currentStart := valid[0].start
	currentEnd := valid[0].end
	covered := time.Duration(0)

	for _, candidate := range valid[1:] {
		if candidate.start.After(currentEnd) {
			covered += currentEnd.Sub(currentStart)
			currentStart = candidate.start
			currentEnd = candidate.end
			continue
		}
		if candidate.end.After(currentEnd) {
			currentEnd = candidate.end
		}
	}

	covered += currentEnd.Sub(currentStart)
	return covered
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.Date,
			summary.StartDateTime.Format("15:04"),
			summary.EndDateTime.Format("15:04"),
			fmt.Sprintf("%.2f", summary.WorkedHours),
			fmt.Sprintf("%.2f", summary.BreakHours),
			strconv.Itoa(summary.EntryCount),
		})
	}

	switch normalizeFormat(format) {
	case "csv":
		return writeCSVTable(path, dailyHeaders, rows)
	case "excel", "xlsx":
		return writeExcelTable(path, dailyHeaders, rows)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}
