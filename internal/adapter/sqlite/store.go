// Package sqlite loads the final dream table into a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/dreamlight-etl/internal/domain"
)

var (
	textColumns = slices.Concat(domain.CategoricalColumns, domain.TextColumns)
	// Insert order: date, text columns, numeric columns, then the row bookkeeping.
	insertColumns = slices.Concat(
		[]string{"date"}, textColumns, domain.NumericColumns,
		[]string{"year", "month", "year_month", "data_type", "loaded_at"},
	)
)

// Store wraps the SQLite database holding the dreams table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Name identifies the sink in logs and metrics.
func (s *Store) Name() string { return "sqlite" }

func createTableStmt() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE dreams (\n    id INTEGER PRIMARY KEY AUTOINCREMENT,\n    date TEXT")
	for _, col := range textColumns {
		fmt.Fprintf(&b, ",\n    %s TEXT", col)
	}
	for _, col := range domain.NumericColumns {
		fmt.Fprintf(&b, ",\n    %s REAL", col)
	}
	b.WriteString(",\n    year INTEGER,\n    month INTEGER,\n    year_month TEXT,\n    data_type TEXT NOT NULL,\n    loaded_at TIMESTAMP\n);")
	return b.String()
}

// migrate recreates the dreams table; each run replaces the previous load.
func (s *Store) migrate(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`DROP TABLE IF EXISTS dreams;`,
		createTableStmt(),
		`CREATE INDEX idx_dreams_city_month ON dreams(city, year, month);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadDreams replaces the dreams table with rows in a single transaction.
func (s *Store) LoadDreams(ctx context.Context, rows []domain.Dream) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := s.migrate(ctx, tx); err != nil {
		return fmt.Errorf("migrate dreams table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(insertColumns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO dreams("+strings.Join(insertColumns, ", ")+") VALUES("+placeholders+")")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	loadedAt := domain.Now()
	for i := range rows {
		args, err := insertArgs(&rows[i], loadedAt)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func insertArgs(d *domain.Dream, loadedAt time.Time) ([]any, error) {
	args := make([]any, 0, len(insertColumns))
	var date any
	if d.HasDate() {
		date = d.Date.Format(time.DateTime)
	}
	args = append(args, date)
	for _, col := range textColumns {
		v, err := d.Column(col)
		if err != nil {
			return nil, err
		}
		args = append(args, nullString(v))
	}
	for _, col := range domain.NumericColumns {
		v, err := d.Numeric(col)
		if err != nil {
			return nil, err
		}
		if v == nil {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}
	var yearMonth any
	if !d.YearMonth.IsZero() {
		yearMonth = d.YearMonth.Format(time.DateOnly)
	}
	return append(args, nullInt(d.Year), nullInt(d.Month), yearMonth, string(d.DataType), loadedAt), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// CountByDataType returns the number of loaded rows per data type.
func (s *Store) CountByDataType(ctx context.Context) (map[domain.DataType]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data_type, COUNT(*) FROM dreams GROUP BY data_type`)
	if err != nil {
		return nil, fmt.Errorf("count dreams: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.DataType]int)
	for rows.Next() {
		var dt string
		var n int
		if err := rows.Scan(&dt, &n); err != nil {
			return nil, fmt.Errorf("count dreams: %w", err)
		}
		counts[domain.DataType(dt)] = n
	}
	return counts, rows.Err()
}
