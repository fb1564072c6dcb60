package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/raffle/pkg/raffle/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sources (
	name TEXT PRIMARY KEY,
	lines INTEGER NOT NULL,
	imported_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS taglists (
	source TEXT NOT NULL,
	line_no INTEGER NOT NULL,
	taglist TEXT NOT NULL,
	PRIMARY KEY(source, line_no),
	FOREIGN KEY(source) REFERENCES sources(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS categorized_tags (
	line_no INTEGER PRIMARY KEY,
	category TEXT NOT NULL,
	tag TEXT NOT NULL
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ImportTaglists replaces a source's lines in a single transaction.
func (s *sqliteStore) ImportTaglists(ctx context.Context, source string, lines []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM taglists WHERE source=?`, source); err != nil {
		return 0, err
	}

	const upsert = `
INSERT INTO sources (name, lines, imported_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET lines=excluded.lines, imported_at=excluded.imported_at;
`
	if _, err := tx.ExecContext(ctx, upsert, source, len(lines), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, err
	}

	if len(lines) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO taglists (source, line_no, taglist) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for i, line := range lines {
			if _, err := stmt.ExecContext(ctx, source, i, line); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(lines), nil
}

// ScanTaglists streams a source's lines in import order.
func (s *sqliteStore) ScanTaglists(ctx context.Context, source string, fn func(line string) error) error {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources WHERE name=?`, source).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return store.MissingSource(source)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT taglist FROM taglists WHERE source=? ORDER BY line_no`, source)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Sources lists imported sources by name.
func (s *sqliteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ImportCategories replaces the categorized tags in a single transaction.
func (s *sqliteStore) ImportCategories(ctx context.Context, entries []store.CategoryEntry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categorized_tags`); err != nil {
		return 0, err
	}

	if len(entries) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO categorized_tags (line_no, category, tag) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, i, e.Category, e.Tag); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ScanCategories streams categorized tags in resource order.
func (s *sqliteStore) ScanCategories(ctx context.Context, fn func(e store.CategoryEntry) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT category, tag FROM categorized_tags ORDER BY line_no`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e store.CategoryEntry
		if err := rows.Scan(&e.Category, &e.Tag); err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}
