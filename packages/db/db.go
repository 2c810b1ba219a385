// Package db persists captured variables per session in SQLite, so values
// captured by one invocation are available to the next.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS captures (
	session    TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (session, name)
);`

// DefaultSession is used when no session name is given.
const DefaultSession = "default"

// Capture is a stored captured value.
type Capture struct {
	Session   string
	Name      string
	Value     string
	UpdatedAt time.Time
}

// Store is a SQLite-backed capture store.
type Store struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// Open opens (creating if needed) the store at path. Accepted forms are a
// plain file path, sqlite://path and sqlite:path.
func Open(path string) (*Store, error) {
	dsn := parseConnectionString(path)
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture store: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise capture store: %w", err)
	}

	return &Store{
		db:           db,
		path:         dsn,
		queryTimeout: 30 * time.Second,
	}, nil
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save records a single captured value, replacing any previous value.
func (s *Store) Save(ctx context.Context, session, name, value string) error {
	return s.SaveAll(ctx, session, map[string]string{name: value})
}

// SaveAll records several captured values in one transaction.
func (s *Store) SaveAll(ctx context.Context, session string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO captures (session, name, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for name, value := range values {
		if _, err := stmt.ExecContext(ctx, session, name, value, now); err != nil {
			return fmt.Errorf("saving capture %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit captures: %w", err)
	}
	return nil
}

// Load returns the captured values of a session.
func (s *Store) Load(ctx context.Context, session string) (map[string]string, error) {
	captures, err := s.List(ctx, session)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(captures))
	for _, c := range captures {
		result[c.Name] = c.Value
	}
	return result, nil
}

// List returns the captures of a session ordered by name.
func (s *Store) List(ctx context.Context, session string) ([]Capture, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value, updated_at FROM captures WHERE session = ? ORDER BY name`, session)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var captures []Capture
	for rows.Next() {
		var (
			c       Capture
			updated int64
		)
		if err := rows.Scan(&c.Name, &c.Value, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		c.Session = session
		c.UpdatedAt = time.Unix(updated, 0)
		captures = append(captures, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return captures, nil
}

// Sessions returns the names of all sessions with stored captures.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session FROM captures ORDER BY session`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sessions = append(sessions, name)
	}
	return sessions, rows.Err()
}

// Clear removes every capture of a session and reports how many were removed.
func (s *Store) Clear(ctx context.Context, session string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM captures WHERE session = ?`, session)
	if err != nil {
		return 0, fmt.Errorf("clearing session %s: %w", session, err)
	}
	return res.RowsAffected()
}

// parseConnectionString strips the optional sqlite:// or sqlite: prefix.
func parseConnectionString(connStr string) string {
	connStr = strings.TrimSpace(connStr)
	if rest, ok := strings.CutPrefix(connStr, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(connStr, "sqlite:"); ok {
		return rest
	}
	return connStr
}
