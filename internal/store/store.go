// Package store keeps the sqlite index of classes, include files and
// configuration files discovered in the project tree. Directive arguments
// (inherit/require/include) are resolved against it by name.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// FileKind classifies an indexed project file.
type FileKind string

const (
	FileClass   FileKind = "class"
	FileInclude FileKind = "include"
	FileConf    FileKind = "conf"
	FileRecipe  FileKind = "recipe"
)

// File is one indexed project file. Name is the directive-facing name: the
// base name without extension for classes, the relative path for includes.
type File struct {
	Name string
	Kind FileKind
	Path string
}

type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the index database at path. ":memory:" is
// accepted for a throwaway index.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`
        PRAGMA foreign_keys = ON;
        PRAGMA journal_mode = WAL;
    `); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			path TEXT NOT NULL PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS files_name_kind ON files (name, kind);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Replace swaps the whole index for the given file set in one transaction.
// A rescan always rebuilds from scratch; there is no incremental update.
func (s *Store) Replace(files []File) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO files (path, name, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		if _, err := stmt.Exec(f.Path, f.Name, string(f.Kind)); err != nil {
			return fmt.Errorf("failed to index %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}
	return nil
}

// Lookup returns the indexed file with the given name and kind.
func (s *Store) Lookup(name string, kind FileKind) (File, bool, error) {
	var f File
	err := s.db.QueryRow(
		`SELECT path, name, kind FROM files WHERE name = ? AND kind = ? LIMIT 1`,
		name, string(kind),
	).Scan(&f.Path, &f.Name, (*string)(&f.Kind))
	if err == sql.ErrNoRows {
		return File{}, false, nil
	}
	if err != nil {
		return File{}, false, fmt.Errorf("lookup failed: %w", err)
	}
	return f, true, nil
}

// ByKind lists all indexed files of a kind, ordered by name.
func (s *Store) ByKind(kind FileKind) ([]File, error) {
	rows, err := s.db.Query(
		`SELECT path, name, kind FROM files WHERE kind = ? ORDER BY name`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Path, &f.Name, (*string)(&f.Kind)); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
