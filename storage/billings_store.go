package storage

import (
	"blib/billings"
	"blib/internal/timeutil"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrSourceUnavailable marks failures to open, read, or query the Billings database.
	ErrSourceUnavailable = errors.New("billings database unavailable")
	ErrReadOnly          = errors.New("billings database opened read-only")
	ErrTimeSlipNotFound  = errors.New("time slip not found")
)

const defaultBusyTimeout = 5 * time.Second

type Options struct {
	Epoch       timeutil.Epoch
	Writable    bool
	BusyTimeout time.Duration
}

// BillingsStore reads the tables of an existing Billings database. It never
// creates or migrates schema.
type BillingsStore struct {
	db       *sql.DB
	epoch    timeutil.Epoch
	writable bool
}

// SkippedRecord describes a row left out of a result because a required
// column was NULL.
type SkippedRecord struct {
	Table  string
	ID     int64
	Reason string
}

type FetchResult struct {
	Slips   []billings.TimeSlip
	Skipped []SkippedRecord
}

type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// DefaultDatabasePath returns the location Billings uses below the user's home directory.
func DefaultDatabasePath(home string) string {
	return filepath.Join(home, "Library", "Application Support", "Billings", "Database", "billings.bid")
}

func OpenBillings(path string, opts Options) (*BillingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrSourceUnavailable)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrSourceUnavailable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: database path is a directory: %s", ErrSourceUnavailable, path)
	}

	epoch := opts.Epoch
	if epoch == "" {
		epoch = timeutil.EpochUnix
	}

	db, err := sql.Open("sqlite", buildDSN(path, opts))
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", ErrSourceUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %w", ErrSourceUnavailable, err)
	}

	return &BillingsStore{db: db, epoch: epoch, writable: opts.Writable}, nil
}

func buildDSN(path string, opts Options) string {
	timeout := opts.BusyTimeout
	if timeout <= 0 {
		timeout = defaultBusyTimeout
	}
	params := []string{fmt.Sprintf("_pragma=busy_timeout(%d)", timeout.Milliseconds())}
	if !opts.Writable {
		params = append(params, "_pragma=query_only(1)")
	}
	return path + "?" + strings.Join(params, "&")
}

func (s *BillingsStore) Close() error {
	return s.db.Close()
}

const slipColumns = `
	ts._rowid,
	ts.projectID,
	ts.name,
	ts.activeForTiming,
	ts.nature,
	p._rowid,
	p.clientID,
	p.name,
	p.nickname
FROM TimeSlip ts
JOIN Project p ON ts.projectID = p._rowid
JOIN Client c ON p.clientID = c._rowid`

// ClientTimeSlips returns the time slips of the client with the given company
// name that are enabled for timing and not private, each with its entries in
// creation order.
func (s *BillingsStore) ClientTimeSlips(ctx context.Context, company string) (FetchResult, error) {
	query := `SELECT` + slipColumns + `
WHERE c.company = ?
	AND ts.activeForTiming = 1
	AND (ts.nature IS NULL OR ts.nature != ?)
ORDER BY ts._rowid;`

	return s.loadSlips(ctx, query, company, billings.NatureMyEyesOnly)
}

// TimeSlip returns one time slip by row id, regardless of its nature.
func (s *BillingsStore) TimeSlip(ctx context.Context, id int64) (billings.TimeSlip, bool, error) {
	if id <= 0 {
		return billings.TimeSlip{}, false, fmt.Errorf("time slip id must be > 0")
	}

	query := `SELECT` + slipColumns + `
WHERE ts._rowid = ?;`

	result, err := s.loadSlips(ctx, query, id)
	if err != nil {
		return billings.TimeSlip{}, false, err
	}
	if len(result.Slips) == 0 {
		return billings.TimeSlip{}, false, nil
	}
	return result.Slips[0], true, nil
}

func (s *BillingsStore) loadSlips(ctx context.Context, query string, args ...any) (FetchResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return FetchResult{}, fmt.Errorf("%w: query time slips: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	result := FetchResult{Slips: make([]billings.TimeSlip, 0, 32)}
	for rows.Next() {
		var (
			slip            billings.TimeSlip
			slipName        sql.NullString
			activeForTiming sql.NullInt64
			nature          sql.NullInt64
			projectName     sql.NullString
			nickname        sql.NullString
		)
		if err := rows.Scan(
			&slip.ID,
			&slip.ProjectID,
			&slipName,
			&activeForTiming,
			&nature,
			&slip.Project.ID,
			&slip.Project.ClientID,
			&projectName,
			&nickname,
		); err != nil {
			return FetchResult{}, fmt.Errorf("%w: scan time slip: %w", ErrSourceUnavailable, err)
		}

		if !slipName.Valid {
			result.Skipped = append(result.Skipped, SkippedRecord{Table: "TimeSlip", ID: slip.ID, Reason: "name is NULL"})
			continue
		}
		if !projectName.Valid {
			result.Skipped = append(result.Skipped, SkippedRecord{Table: "Project", ID: slip.Project.ID, Reason: "name is NULL"})
			continue
		}

		slip.Name = slipName.String
		slip.ActiveForTiming = activeForTiming.Valid && activeForTiming.Int64 != 0
		slip.Nature = nature.Int64
		slip.Project.Name = projectName.String
		slip.Project.Nickname = nickname.String
		result.Slips = append(result.Slips, slip)
	}
	if err := rows.Err(); err != nil {
		return FetchResult{}, fmt.Errorf("%w: iterate time slips: %w", ErrSourceUnavailable, err)
	}
	if len(result.Slips) == 0 {
		return result, nil
	}

	entries, broken, err := s.loadEntries(ctx, result.Slips)
	if err != nil {
		return FetchResult{}, err
	}

	kept := result.Slips[:0]
	for _, slip := range result.Slips {
		if reason, ok := broken[slip.ID]; ok {
			result.Skipped = append(result.Skipped, SkippedRecord{Table: "TimeEntry", ID: reason.ID, Reason: reason.Reason})
			continue
		}
		slip.Entries = entries[slip.ID]
		kept = append(kept, slip)
	}
	result.Slips = kept

	return result, nil
}

// loadEntries returns entries per slip id. Slips with an entry whose start is
// NULL are reported in the second map, keyed by slip id.
func (s *BillingsStore) loadEntries(ctx context.Context, slips []billings.TimeSlip) (map[int64][]billings.TimeEntry, map[int64]SkippedRecord, error) {
	placeholders := make([]string, 0, len(slips))
	args := make([]any, 0, len(slips))
	for _, slip := range slips {
		placeholders = append(placeholders, "?")
		args = append(args, slip.ID)
	}

	query := `
SELECT
	_rowid,
	timeSlipID,
	startDateTime,
	endDateTime
FROM TimeEntry
WHERE timeSlipID IN (` + strings.Join(placeholders, ", ") + `)
ORDER BY timeSlipID, _rowid;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query time entries: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	entries := make(map[int64][]billings.TimeEntry, len(slips))
	broken := make(map[int64]SkippedRecord)
	for rows.Next() {
		var (
			entry    billings.TimeEntry
			startRaw sql.NullFloat64
			endRaw   sql.NullFloat64
		)
		if err := rows.Scan(&entry.ID, &entry.TimeSlipID, &startRaw, &endRaw); err != nil {
			return nil, nil, fmt.Errorf("%w: scan time entry: %w", ErrSourceUnavailable, err)
		}
		if !startRaw.Valid {
			if _, seen := broken[entry.TimeSlipID]; !seen {
				broken[entry.TimeSlipID] = SkippedRecord{Table: "TimeEntry", ID: entry.ID, Reason: "startDateTime is NULL"}
			}
			continue
		}

		entry.Start = timeutil.FromSeconds(startRaw.Float64, s.epoch)
		entry.End = s.endTime(endRaw)
		entries[entry.TimeSlipID] = append(entries[entry.TimeSlipID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: iterate time entries: %w", ErrSourceUnavailable, err)
	}

	return entries, broken, nil
}

func (s *BillingsStore) endTime(raw sql.NullFloat64) billings.EndTime {
	if !raw.Valid {
		return billings.EndTime{}
	}
	return billings.EndTime{Time: timeutil.FromSeconds(raw.Float64, s.epoch), Valid: true}
}

// EntryRange bounds exported entries by start time. From is inclusive, To is
// exclusive, and a zero value leaves that side open.
type EntryRange struct {
	From time.Time
	To   time.Time
}

// EntryRows returns every time entry of the client's non-private slips that
// starts within period, flattened for export and ordered by start time.
func (s *BillingsStore) EntryRows(ctx context.Context, company string, period EntryRange) ([]billings.EntryRow, []SkippedRecord, error) {
	if !period.From.IsZero() && !period.To.IsZero() && !period.To.After(period.From) {
		return nil, nil, fmt.Errorf("entry range end %s is not after start %s", period.To.Format(time.RFC3339), period.From.Format(time.RFC3339))
	}

	query := `
SELECT
	te._rowid,
	c.company,
	p.name,
	p.nickname,
	ts.name,
	te.startDateTime,
	te.endDateTime
FROM TimeEntry te
JOIN TimeSlip ts ON te.timeSlipID = ts._rowid
JOIN Project p ON ts.projectID = p._rowid
JOIN Client c ON p.clientID = c._rowid
WHERE c.company = ?
	AND (ts.nature IS NULL OR ts.nature != ?)`
	args := []any{company, billings.NatureMyEyesOnly}
	if !period.From.IsZero() {
		query += `
	AND te.startDateTime >= ?`
		args = append(args, timeutil.ToSeconds(period.From, s.epoch))
	}
	if !period.To.IsZero() {
		query += `
	AND te.startDateTime < ?`
		args = append(args, timeutil.ToSeconds(period.To, s.epoch))
	}
	query += `
ORDER BY te.startDateTime, te._rowid;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query entry rows: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	result := make([]billings.EntryRow, 0, 256)
	skipped := make([]SkippedRecord, 0)
	for rows.Next() {
		var (
			row         billings.EntryRow
			projectName sql.NullString
			nickname    sql.NullString
			slipName    sql.NullString
			startRaw    sql.NullFloat64
			endRaw      sql.NullFloat64
		)
		if err := rows.Scan(&row.EntryID, &row.Client, &projectName, &nickname, &slipName, &startRaw, &endRaw); err != nil {
			return nil, nil, fmt.Errorf("%w: scan entry row: %w", ErrSourceUnavailable, err)
		}
		if !startRaw.Valid {
			skipped = append(skipped, SkippedRecord{Table: "TimeEntry", ID: row.EntryID, Reason: "startDateTime is NULL"})
			continue
		}

		row.Project = billings.Project{Name: projectName.String, Nickname: nickname.String}.DisplayName()
		row.TimeSlip = slipName.String
		row.Start = timeutil.FromSeconds(startRaw.Float64, s.epoch)
		row.End = s.endTime(endRaw)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: iterate entry rows: %w", ErrSourceUnavailable, err)
	}

	return result, skipped, nil
}

func (s *BillingsStore) ListClients(ctx context.Context) ([]billings.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT _rowid, company FROM Client WHERE company IS NOT NULL ORDER BY company, _rowid;`)
	if err != nil {
		return nil, fmt.Errorf("%w: query clients: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	clients := make([]billings.Client, 0, 16)
	for rows.Next() {
		var client billings.Client
		if err := rows.Scan(&client.ID, &client.Company); err != nil {
			return nil, fmt.Errorf("%w: scan client: %w", ErrSourceUnavailable, err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate clients: %w", ErrSourceUnavailable, err)
	}
	return clients, nil
}

func (s *BillingsStore) ClientByCompany(ctx context.Context, company string) (billings.Client, bool, error) {
	var client billings.Client
	err := s.db.QueryRowContext(ctx, `SELECT _rowid, company FROM Client WHERE company = ? ORDER BY _rowid LIMIT 1;`, company).
		Scan(&client.ID, &client.Company)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return billings.Client{}, false, nil
		}
		return billings.Client{}, false, fmt.Errorf("%w: query client %q: %w", ErrSourceUnavailable, company, err)
	}
	return client, true, nil
}

// SetActiveForTiming toggles whether a slip is offered for timing. It is the
// only write the store performs and requires Options.Writable.
func (s *BillingsStore) SetActiveForTiming(ctx context.Context, id int64, active bool) error {
	if !s.writable {
		return ErrReadOnly
	}
	if id <= 0 {
		return fmt.Errorf("time slip id must be > 0")
	}

	value := 0
	if active {
		value = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE TimeSlip SET activeForTiming = ? WHERE _rowid = ?;`, value, id)
	if err != nil {
		return fmt.Errorf("%w: update time slip %d: %w", ErrSourceUnavailable, id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTimeSlipNotFound
	}
	return nil
}
