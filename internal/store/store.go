// Package store persists paper sessions in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/pyqbook/internal/paper"
	"github.com/dgallion1/pyqbook/internal/session"
	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database holding papers and their questions.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and applies the schema.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored copy of a session.
func (s *Store) Save(ctx context.Context, snap session.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO papers (id, filename, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at
	`, snap.ID, snap.Filename, snap.ContentHash, formatTime(snap.CreatedAt), formatTime(snap.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert paper: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE paper_id = ?", snap.ID); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (paper_id, position, number, preview, content, marks, chapter, year, page)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare question insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range snap.Questions {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, q.Number, q.Preview, q.Content, q.Marks, q.Chapter, q.Year, q.Page); err != nil {
			return fmt.Errorf("insert question %d: %w", q.Number, err)
		}
	}

	return tx.Commit()
}

// Load reads a session back. Missing papers yield session.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (session.Snapshot, error) {
	snap := session.Snapshot{ID: id, Questions: []paper.Question{}}
	var created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, content_hash, created_at, updated_at FROM papers WHERE id = ?
	`, id).Scan(&snap.Filename, &snap.ContentHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, session.ErrNotFound
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("query paper: %w", err)
	}
	snap.CreatedAt = parseTime(created)
	snap.UpdatedAt = parseTime(updated)

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, preview, content, marks, chapter, year, page
		FROM questions WHERE paper_id = ? ORDER BY position
	`, id)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q paper.Question
		if err := rows.Scan(&q.Number, &q.Preview, &q.Content, &q.Marks, &q.Chapter, &q.Year, &q.Page); err != nil {
			return session.Snapshot{}, fmt.Errorf("scan question: %w", err)
		}
		snap.Questions = append(snap.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return session.Snapshot{}, err
	}
	return snap, nil
}

// Delete removes a paper and its questions.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM papers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}

// FindByHash returns the most recently updated paper with the given content hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM papers WHERE content_hash = ? ORDER BY updated_at DESC LIMIT 1
	`, hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", session.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query paper by hash: %w", err)
	}
	return id, nil
}

// List returns every stored paper, most recently updated first.
func (s *Store) List(ctx context.Context) ([]session.Info, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.filename, p.updated_at,
			COUNT(q.position),
			COALESCE(SUM(CASE WHEN q.chapter != '' AND q.chapter != ? THEN 1 ELSE 0 END), 0)
		FROM papers p LEFT JOIN questions q ON q.paper_id = p.id
		GROUP BY p.id
		ORDER BY p.updated_at DESC
	`, paper.SelectPlaceholder)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	var out []session.Info
	for rows.Next() {
		var p session.Info
		var updated string
		if err := rows.Scan(&p.ID, &p.Filename, &updated, &p.Questions, &p.Assigned); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		p.UpdatedAt = parseTime(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
