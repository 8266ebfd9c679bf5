package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TableNames lists the user tables of the database.
func (s *BillingsStore) TableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name
FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("%w: query table names: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	names := make([]string, 0, 64)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan table name: %w", ErrSourceUnavailable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate table names: %w", ErrSourceUnavailable, err)
	}
	return names, nil
}

// Columns describes the columns of table. The name must match an existing
// table exactly.
func (s *BillingsStore) Columns(ctx context.Context, table string) ([]Column, error) {
	names, err := s.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, name := range names {
		if name == table {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(`+quoted+`);`)
	if err != nil {
		return nil, fmt.Errorf("%w: query table info: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	columns := make([]Column, 0, 16)
	for rows.Next() {
		var (
			cid       int
			column    Column
			colType   sql.NullString
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &column.Name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("%w: scan table info: %w", ErrSourceUnavailable, err)
		}
		column.Type = colType.String
		column.NotNull = notNull != 0
		column.PrimaryKey = pk > 0
		columns = append(columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate table info: %w", ErrSourceUnavailable, err)
	}
	return columns, nil
}
