package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

const fixtureSchema = `
CREATE TABLE Client (
	_rowid INTEGER PRIMARY KEY,
	company TEXT
);
CREATE TABLE Project (
	_rowid INTEGER PRIMARY KEY,
	clientID INTEGER,
	name TEXT,
	nickname TEXT
);
CREATE TABLE TimeSlip (
	_rowid INTEGER PRIMARY KEY,
	projectID INTEGER,
	name TEXT,
	activeForTiming INTEGER,
	nature INTEGER
);
CREATE TABLE TimeEntry (
	_rowid INTEGER PRIMARY KEY,
	timeSlipID INTEGER,
	startDateTime REAL,
	endDateTime REAL
);
`

var fixtureBase = time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

func fixtureSeconds(offset time.Duration) float64 {
	return float64(fixtureBase.Add(offset).Unix())
}

// newFixtureDB writes a small Billings-shaped database and returns its path.
func newFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "billings.bid")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(fixtureSchema); err != nil {
		t.Fatalf("create fixture schema: %v", err)
	}

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO Client (_rowid, company) VALUES (1, 'Acme'), (2, 'Globex'), (3, NULL);`, nil},
		{`INSERT INTO Project (_rowid, clientID, name, nickname) VALUES
			(10, 1, 'Website Relaunch', 'web'),
			(11, 1, 'Support', NULL),
			(12, 2, 'Other', NULL),
			(13, 1, NULL, NULL);`, nil},
		{`INSERT INTO TimeSlip (_rowid, projectID, name, activeForTiming, nature) VALUES
			(100, 10, 'Design', 1, 0),
			(101, 11, 'Tickets', 1, NULL),
			(102, 10, 'Secret', 1, 103),
			(103, 10, 'Archived', 0, 0),
			(104, 12, 'Globex work', 1, 0),
			(105, 10, NULL, 1, 0),
			(106, 13, 'Orphan', 1, 0),
			(107, 11, 'Broken entry', 1, 0);`, nil},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, ?, ?);`, []any{1000, 100, fixtureSeconds(0), fixtureSeconds(time.Hour)}},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, ?, NULL);`, []any{1001, 100, fixtureSeconds(2 * time.Hour)}},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, ?, ?);`, []any{1002, 101, fixtureSeconds(30 * time.Minute), fixtureSeconds(45 * time.Minute)}},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, ?, ?);`, []any{1003, 102, fixtureSeconds(0), fixtureSeconds(time.Hour)}},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, NULL, ?);`, []any{1004, 107, fixtureSeconds(time.Hour)}},
		{`INSERT INTO TimeEntry (_rowid, timeSlipID, startDateTime, endDateTime) VALUES (?, ?, ?, ?);`, []any{1005, 103, fixtureSeconds(-time.Hour), fixtureSeconds(-30 * time.Minute)}},
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed fixture db: %v", err)
		}
	}

	return path
}

func openFixture(t *testing.T, opts Options) *BillingsStore {
	t.Helper()

	store, err := OpenBillings(newFixtureDB(t), opts)
	if err != nil {
		t.Fatalf("open billings: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
