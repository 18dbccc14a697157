// Package sqlite provides an SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite FOR AN IN-MEMORY STORE?
// ───────────────────────────────────
// The default data source name is ":memory:", so the table lives inside the
// process and disappears with it, exactly like the slice-backed store. Point
// storage.path at a file and the same code keeps rows across restarts,
// which is handy for local experiments.
//
// Insertion order is carried by the autoincrement `seq` column. Positional
// operations (At, ReplaceAt, RemoveAt) translate an index into a seq with
// ORDER BY seq LIMIT 1 OFFSET ?.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/table-api/internal/config"
	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/types"

	"github.com/mattn/go-sqlite3"
)

const columns = "id, name, age, gender, city, birth_date, education"

// SQLite is the concrete SQLite implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the database at cfg.Path, creates the table if it does not
// already exist, and returns a ready-to-use *SQLite.
func New(cfg config.Storage) (*SQLite, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty
	// database, so the pool is pinned to a single long-lived connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS table_rows (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT    NOT NULL UNIQUE,
			name       TEXT    NOT NULL,
			age        INTEGER NOT NULL,
			gender     TEXT    NOT NULL,
			city       TEXT    NOT NULL,
			birth_date TEXT    NOT NULL,
			education  TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// List returns every row ordered by seq, i.e. insertion order.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) List(ctx context.Context) ([]types.Row, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM table_rows ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("List: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON is better API behaviour.
	out := make([]types.Row, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Append inserts a row; seq is assigned by SQLite so the row lands last.
// A UNIQUE violation on id maps to storage.ErrDuplicateID.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Append(ctx context.Context, row types.Row) error {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO table_rows ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("Append: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		row.ID, row.Name, int64(row.Age), row.Gender, row.City, row.BirthDate, row.Education,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Append: %q: %w", row.ID, storage.ErrDuplicateID)
		}
		return fmt.Errorf("Append: exec: %w", err)
	}

	return nil
}

// FindIndex counts the rows inserted before the one carrying id.
func (s *SQLite) FindIndex(ctx context.Context, id string) (int, error) {
	var seq int64
	err := s.Db.QueryRowContext(ctx,
		"SELECT seq FROM table_rows WHERE id = ? LIMIT 1", id,
	).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("FindIndex: lookup: %w", err)
	}

	var index int
	err = s.Db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM table_rows WHERE seq < ?", seq,
	).Scan(&index)
	if err != nil {
		return -1, fmt.Errorf("FindIndex: count: %w", err)
	}

	return index, nil
}

func (s *SQLite) At(ctx context.Context, index int) (types.Row, error) {
	if index < 0 {
		return types.Row{}, fmt.Errorf("At: %d: %w", index, storage.ErrIndexOutOfRange)
	}

	row, err := scanRow(s.Db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM table_rows ORDER BY seq LIMIT 1 OFFSET ?", index,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Row{}, fmt.Errorf("At: %d: %w", index, storage.ErrIndexOutOfRange)
	}
	if err != nil {
		return types.Row{}, fmt.Errorf("At: scan: %w", err)
	}

	return row, nil
}

// ReplaceAt keeps the row's seq, so its position does not change.
func (s *SQLite) ReplaceAt(ctx context.Context, index int, row types.Row) error {
	if index < 0 {
		return fmt.Errorf("ReplaceAt: %d: %w", index, storage.ErrIndexOutOfRange)
	}

	result, err := s.Db.ExecContext(ctx, `
		UPDATE table_rows
		SET id = ?, name = ?, age = ?, gender = ?, city = ?, birth_date = ?, education = ?
		WHERE seq = (SELECT seq FROM table_rows ORDER BY seq LIMIT 1 OFFSET ?)`,
		row.ID, row.Name, int64(row.Age), row.Gender, row.City, row.BirthDate, row.Education,
		index,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ReplaceAt: %q: %w", row.ID, storage.ErrDuplicateID)
		}
		return fmt.Errorf("ReplaceAt: exec: %w", err)
	}

	return requireAffected("ReplaceAt", index, result)
}

func (s *SQLite) RemoveAt(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("RemoveAt: %d: %w", index, storage.ErrIndexOutOfRange)
	}

	result, err := s.Db.ExecContext(ctx, `
		DELETE FROM table_rows
		WHERE seq = (SELECT seq FROM table_rows ORDER BY seq LIMIT 1 OFFSET ?)`,
		index,
	)
	if err != nil {
		return fmt.Errorf("RemoveAt: exec: %w", err)
	}

	return requireAffected("RemoveAt", index, result)
}

// Close closes the underlying connection pool. For ":memory:" this drops
// every row.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRow reads the columns listed in `columns`, in that order.
func scanRow(sc scanner) (types.Row, error) {
	var row types.Row
	var age int64
	err := sc.Scan(
		&row.ID,
		&row.Name,
		&age,
		&row.Gender,
		&row.City,
		&row.BirthDate,
		&row.Education,
	)
	row.Age = types.Age(age)
	return row, err
}

func requireAffected(op string, index int, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %d: %w", op, index, storage.ErrIndexOutOfRange)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
