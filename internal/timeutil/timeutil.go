package timeutil

import "time"

// DayKey returns the local calendar day of value as YYYY-MM-DD.
func DayKey(value time.Time) string {
	return value.In(time.Local).Format("2006-01-02")
}
