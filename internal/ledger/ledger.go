// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records completed downloads in a SQLite database so that a
// file left on disk can be checked against the bytes that were fetched.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry describes one completed download. Path is absolute, so one ledger
// can serve several download directories.
type Entry struct {
	Path      string
	URL       string
	SHA256    string
	Size      int64
	FetchedAt time.Time
}

// Ledger wraps the download ledger database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db, path: path}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Path returns the database file path.
func (l *Ledger) Path() string { return l.path }

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS files (
		path       TEXT PRIMARY KEY,
		url        TEXT NOT NULL,
		sha256     TEXT NOT NULL,
		size       INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	return err
}

// key makes file paths comparable across working directories.
func key(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", file, err)
	}
	return abs, nil
}

// Record inserts or replaces the entry for e.Path.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	k, err := key(e.Path)
	if err != nil {
		return err
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now()
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO files (path, url, sha256, size, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			url = excluded.url,
			sha256 = excluded.sha256,
			size = excluded.size,
			fetched_at = excluded.fetched_at`,
		k, e.URL, e.SHA256, e.Size, e.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", k, err)
	}
	return nil
}

// Lookup returns the entry for the file at path. The boolean is false when
// no entry exists.
func (l *Ledger) Lookup(ctx context.Context, path string) (Entry, bool, error) {
	k, err := key(path)
	if err != nil {
		return Entry{}, false, err
	}
	var e Entry
	var fetched string
	err = l.db.QueryRowContext(ctx,
		`SELECT path, url, sha256, size, fetched_at FROM files WHERE path = ?`,
		k,
	).Scan(&e.Path, &e.URL, &e.SHA256, &e.Size, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("looking up %s: %w", k, err)
	}
	if t, parseErr := time.Parse(time.RFC3339Nano, fetched); parseErr == nil {
		e.FetchedAt = t
	}
	return e, true, nil
}

// Forget removes the entry for the file at path, if any.
func (l *Ledger) Forget(ctx context.Context, path string) error {
	k, err := key(path)
	if err != nil {
		return err
	}
	if _, err := l.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, k); err != nil {
		return fmt.Errorf("forgetting %s: %w", k, err)
	}
	return nil
}

// Verify reports whether the file at path matches the recorded entry
// (same size and SHA-256).
func (e Entry) Verify(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.Size() != e.Size {
		return false, nil
	}
	sum, _, err := HashFile(path)
	if err != nil {
		return false, err
	}
	return sum == e.SHA256, nil
}

// HashFile returns the hex SHA-256 and size of the file at path.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
