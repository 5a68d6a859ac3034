// Package repositories implements the judiciary repositories and the unit of
// work on top of database/sql. Statements are built with squirrel so the same
// code serves PostgreSQL ($n placeholders) and SQLite (? placeholders).
package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/database/sqldb"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
)

// Table names. The schema predates this code base and keeps its Portuguese
// names.
const (
	tableUnits        = "tribunais"
	tableAdjudicators = "juizes"
	tableCases        = "decisoes"
)

// queryExecutor abstracts sql.DB and sql.Tx
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// base carries what every repository needs.
type base struct {
	exec    queryExecutor
	sb      sq.StatementBuilderType
	dialect sqldb.Dialect
}

func newBase(exec queryExecutor, dialect sqldb.Dialect) base {
	var format sq.PlaceholderFormat = sq.Dollar
	if dialect == sqldb.DialectSQLite {
		format = sq.Question
	}
	return base{
		exec:    exec,
		sb:      sq.StatementBuilder.PlaceholderFormat(format),
		dialect: dialect,
	}
}

func (b base) queryRow(ctx context.Context, q sq.Sqlizer) (*sql.Row, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build query")
	}
	return b.exec.QueryRowContext(ctx, query, args...), nil
}

func (b base) query(ctx context.Context, q sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build query")
	}
	return b.exec.QueryContext(ctx, query, args...)
}

func (b base) execute(ctx context.Context, q sq.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build query")
	}
	return b.exec.ExecContext(ctx, query, args...)
}

func (b base) count(ctx context.Context, q sq.SelectBuilder) (int64, error) {
	row, err := b.queryRow(ctx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count rows")
	}
	return n, nil
}

// isUniqueViolation recognises unique-constraint errors from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if stderrors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// translateWriteError maps driver errors to AppErrors.
func translateWriteError(err error, what string) error {
	if isUniqueViolation(err) {
		return errors.Wrap(err, errors.ErrCodePersistenceConflict, what+" already exists")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to write "+what)
}

// nullDate scans DATE columns (time.Time from pgx) and the ISO text used by
// the SQLite schema.
type nullDate struct {
	Time  time.Time
	Valid bool
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999-07:00"}

func (d *nullDate) Scan(src any) error {
	d.Valid = false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		d.Time, d.Valid = v.UTC(), true
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("nullDate: unsupported type %T", src)
	}
}

func (d *nullDate) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time, d.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("nullDate: cannot parse %q", s)
}

func (d nullDate) ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// dateValue renders a filing date for insertion. Both schemas accept ISO
// dates.
func dateValue(t *time.Time) driver.Value {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02")
}

//Personal.AI order the ending
