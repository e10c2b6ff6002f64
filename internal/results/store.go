// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists extracted report concepts in a SQLite table
// with one row per report and one REAL column per tracked concept.
package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

const tableName = "reports"

// Outcome tells how an upsert was applied.
type Outcome int

const (
	Inserted Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "inserted"
}

// ConflictError reports an insert rejected because the report_id already
// has a row.
type ConflictError struct {
	ReportID string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("report %s already stored: %v", e.ReportID, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Store manages the result database.
type Store struct {
	db    *sql.DB
	vocab types.Vocabulary
	qb    sq.StatementBuilderType
}

// Open opens or creates the SQLite database at path and makes sure the
// reports table has a column for every vocabulary concept. Columns added
// for new concepts default to 0.
func Open(path string, vocab types.Vocabulary) (*Store, error) {
	if err := vocab.Validate(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer; also keeps in-memory databases on a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:    db,
		vocab: vocab,
		qb:    sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Vocabulary returns the concept columns this store writes.
func (s *Store) Vocabulary() types.Vocabulary {
	return s.vocab
}

func (s *Store) createSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+tableName+` (
		report_id TEXT PRIMARY KEY,
		source_url TEXT
	)`)
	if err != nil {
		return fmt.Errorf("creating %s table: %w", tableName, err)
	}

	existing, err := s.columns(ctx)
	if err != nil {
		return err
	}
	for _, name := range s.vocab {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN "%s" REAL NOT NULL DEFAULT 0`, tableName, name)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("adding column %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('`+tableName+`')`)
	if err != nil {
		return nil, fmt.Errorf("reading table info: %w", err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table info: %w", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Insert adds a new row. It returns a *ConflictError when report_id is
// already present.
func (s *Store) Insert(ctx context.Context, row types.ResultRow) error {
	cols := make([]string, 0, len(s.vocab)+2)
	vals := make([]any, 0, len(s.vocab)+2)
	cols = append(cols, types.ColumnReportID, types.ColumnSourceURL)
	vals = append(vals, row.ReportID, row.SourceURL)
	for _, name := range s.vocab {
		cols = append(cols, quote(name))
		vals = append(vals, row.Values[name])
	}

	query, args, err := s.qb.Insert(tableName).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isPrimaryKeyConflict(err) {
			return &ConflictError{ReportID: row.ReportID, Err: err}
		}
		return fmt.Errorf("inserting report %s: %w", row.ReportID, err)
	}
	return nil
}

// Update overwrites an existing row. An empty SourceURL leaves the stored
// URL untouched; concept values are always written, zeros included.
func (s *Store) Update(ctx context.Context, row types.ResultRow) error {
	b := s.qb.Update(tableName)
	if row.SourceURL != "" {
		b = b.Set(types.ColumnSourceURL, row.SourceURL)
	}
	for _, name := range s.vocab {
		b = b.Set(quote(name), row.Values[name])
	}
	query, args, err := b.Where(sq.Eq{types.ColumnReportID: row.ReportID}).ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating report %s: %w", row.ReportID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating report %s: %w", row.ReportID, sql.ErrNoRows)
	}
	return nil
}

// Upsert inserts row and falls back to Update on a primary key conflict,
// so writing the same report twice leaves a single row.
func (s *Store) Upsert(ctx context.Context, row types.ResultRow) (Outcome, error) {
	err := s.Insert(ctx, row)
	if err == nil {
		return Inserted, nil
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		return Inserted, err
	}
	if err := s.Update(ctx, row); err != nil {
		return Updated, err
	}
	return Updated, nil
}

// Get returns the row for reportID, or sql.ErrNoRows.
func (s *Store) Get(ctx context.Context, reportID string) (types.ResultRow, error) {
	rows, err := s.query(ctx, s.selectRows().Where(sq.Eq{types.ColumnReportID: reportID}))
	if err != nil {
		return types.ResultRow{}, err
	}
	if len(rows) == 0 {
		return types.ResultRow{}, fmt.Errorf("report %s: %w", reportID, sql.ErrNoRows)
	}
	return rows[0], nil
}

// All returns every stored row ordered by report_id.
func (s *Store) All(ctx context.Context) ([]types.ResultRow, error) {
	return s.query(ctx, s.selectRows().OrderBy(types.ColumnReportID))
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	query, args, err := s.qb.Select("count(*)").From(tableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}
	return n, nil
}

func (s *Store) selectRows() sq.SelectBuilder {
	cols := []string{types.ColumnReportID, types.ColumnSourceURL}
	for _, name := range s.vocab {
		cols = append(cols, quote(name))
	}
	return s.qb.Select(cols...).From(tableName)
}

func (s *Store) query(ctx context.Context, b sq.SelectBuilder) ([]types.ResultRow, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []types.ResultRow
	for rows.Next() {
		var (
			id     string
			srcURL sql.NullString
			values = make([]float64, len(s.vocab))
		)
		dest := make([]any, 0, len(s.vocab)+2)
		dest = append(dest, &id, &srcURL)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}

		row := types.ResultRow{
			ReportID:  id,
			SourceURL: srcURL.String,
			Values:    make(map[string]float64, len(s.vocab)),
		}
		for i, name := range s.vocab {
			row.Values[name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func isPrimaryKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// quote wraps a validated concept name as a SQL identifier.
func quote(name string) string {
	return `"` + name + `"`
}
