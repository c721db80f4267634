// ABOUTME: SQLite database connection, lifecycle and transaction helpers.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/harperreed/journey/internal/apperr"
)

var _ Repository = (*DB)(nil)

// DB is the SQLite-backed Repository.
type DB struct {
	db     *sql.DB
	dbPath string

	// beforeSessionDelete runs inside the cascade transaction after the
	// exercises are gone and before the session row is removed.
	beforeSessionDelete func() error
	// beforeImportCommit runs inside the import transaction after every row
	// has been written.
	beforeImportCommit func() error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps the per-connection pragmas in force and
	// serialises writers.
	db.SetMaxOpenConns(1)

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := d.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log.Debugf("storage: opened sqlite database at %s", dbPath)
	return d, nil
}

// OpenDefault opens the database at the default XDG data path.
func OpenDefault() (*DB, error) {
	return Open(DefaultDBPath())
}

// DataDir returns the default data directory following XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "journey")
}

// DefaultDBPath returns the default database path following XDG spec.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "journey.db")
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for optimal performance.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// withTx runs fn in a transaction, committing on success and rolling back on
// any error. fn must use tx, never d.db: the pool holds a single connection.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage("begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = multierr.Append(err, apperr.Storage("rollback transaction", rollbackErr))
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = apperr.Storage("commit transaction", commitErr)
		}
	}()

	return fn(tx)
}

// isConstraint reports whether err is a SQLite constraint violation
// (unique, foreign key, not null, check).
func isConstraint(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// storageErr classifies a driver error for op.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if isConstraint(err) {
		return apperr.Integrity(op, err)
	}
	return apperr.Storage(op, err)
}

// resolveID finds the full ID in table from a full ID or unique prefix.
func resolveID(ctx context.Context, q querier, table, op, idOrPrefix string) (string, error) {
	prefix, ok := normalizePrefix(idOrPrefix)
	if !ok {
		return "", apperr.NotFound(op, idOrPrefix)
	}
	if isFullID(prefix) {
		var id string
		err := q.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE id = ?", prefix).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.NotFound(op, idOrPrefix)
		}
		if err != nil {
			return "", apperr.Storage(op, fmt.Errorf("resolve ID: %w", err))
		}
		return id, nil
	}

	rows, err := q.QueryContext(ctx, "SELECT id FROM "+table+" WHERE id LIKE ? || '%' LIMIT 2", prefix)
	if err != nil {
		return "", apperr.Storage(op, fmt.Errorf("resolve ID: %w", err))
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", apperr.Storage(op, fmt.Errorf("scan ID: %w", err))
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", apperr.Storage(op, fmt.Errorf("resolve ID: %w", err))
	}

	return pickMatch(op, idOrPrefix, matches)
}

// deleteByID removes one row and reports not found when nothing matched.
func deleteByID(ctx context.Context, q querier, table, op, idOrPrefix string) error {
	id, err := resolveID(ctx, q, table, op, idOrPrefix)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return storageErr(op, err)
	}
	log.Debugf("storage: %s %s", op, id)
	return nil
}

// rangeClause appends WHERE/ORDER BY/LIMIT for a Query over column.
func rangeClause(base, column string, q Query, args []any) (string, []any) {
	var conds []string
	if q.From != nil {
		conds = append(conds, column+" >= ?")
		args = append(args, formatTime(*q.From))
	}
	if q.To != nil {
		conds = append(conds, column+" < ?")
		args = append(args, formatTime(*q.To))
	}

	query := base
	if len(conds) > 0 {
		if strings.Contains(base, " WHERE ") {
			query += " AND " + strings.Join(conds, " AND ")
		} else {
			query += " WHERE " + strings.Join(conds, " AND ")
		}
	}

	dir := "DESC"
	if q.Order == Oldest {
		dir = "ASC"
	}
	query += " ORDER BY " + column + " " + dir + ", id " + dir

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}
	return query, args
}
