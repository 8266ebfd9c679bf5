package billings

import (
	"strings"
	"time"
)

// NatureMyEyesOnly is the TimeSlip.nature value Billings uses for private
// ("my eyes only") slips.
const NatureMyEyesOnly = 103

type Client struct {
	ID      int64
	Company string
}

type Project struct {
	ID       int64
	ClientID int64
	Name     string
	Nickname string
}

// DisplayName returns the nickname when set, else the project name.
func (p Project) DisplayName() string {
	if nickname := strings.TrimSpace(p.Nickname); nickname != "" {
		return nickname
	}
	return p.Name
}

// EndTime is a nullable end timestamp. Valid is false while the entry is
// still being timed.
type EndTime struct {
	Time  time.Time
	Valid bool
}

// Equal reports whether two end timestamps are the same observation.
// Two running (NULL) values are equal.
func (e EndTime) Equal(other EndTime) bool {
	if e.Valid != other.Valid {
		return false
	}
	if !e.Valid {
		return true
	}
	return e.Time.Equal(other.Time)
}

func (e EndTime) String() string {
	if !e.Valid {
		return "running"
	}
	return e.Time.Format(time.RFC3339)
}

type TimeEntry struct {
	ID         int64
	TimeSlipID int64
	Start      time.Time
	End        EndTime
}

// Duration returns the entry length, or zero while the entry is running.
func (e TimeEntry) Duration() time.Duration {
	if !e.End.Valid || e.End.Time.Before(e.Start) {
		return 0
	}
	return e.End.Time.Sub(e.Start)
}

type TimeSlip struct {
	ID              int64
	ProjectID       int64
	Name            string
	ActiveForTiming bool
	Nature          int64
	Project         Project
	// Entries are ordered by creation (row id ascending).
	Entries []TimeEntry
}

// Private reports whether the slip is excluded from external reporting.
func (s TimeSlip) Private() bool {
	return s.Nature == NatureMyEyesOnly
}

// LastEnd returns the end timestamp of the most recent entry. The second
// return value is false when the slip has no entries.
func (s TimeSlip) LastEnd() (EndTime, bool) {
	if len(s.Entries) == 0 {
		return EndTime{}, false
	}
	return s.Entries[len(s.Entries)-1].End, true
}

// EntryRow is one time entry flattened with its owning slip, project and
// client, as used by exports.
type EntryRow struct {
	EntryID  int64
	Client   string
	Project  string
	TimeSlip string
	Start    time.Time
	End      EndTime
}

func (r EntryRow) Duration() time.Duration {
	return TimeEntry{Start: r.Start, End: r.End}.Duration()
}
