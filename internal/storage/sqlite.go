package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSessionStore implements SessionStore using SQLite.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if missing.
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSessionStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookmarks (
		article_id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS alert_actions (
		alert_id TEXT PRIMARY KEY,
		action TEXT NOT NULL CHECK (action IN ('acknowledged', 'dismissed')),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// AddBookmark records a bookmarked article id. Idempotent.
func (s *SQLiteSessionStore) AddBookmark(ctx context.Context, articleID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO bookmarks (article_id, created_at) VALUES (?, ?)`,
		articleID, time.Now(),
	)
	return err
}

// RemoveBookmark deletes a bookmarked article id.
func (s *SQLiteSessionStore) RemoveBookmark(ctx context.Context, articleID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE article_id = ?`, articleID)
	return err
}

// Bookmarks returns all bookmarked article ids, oldest first.
func (s *SQLiteSessionStore) Bookmarks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT article_id FROM bookmarks ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkAcknowledged records an acknowledged alert. A previously dismissed
// alert stays dismissed.
func (s *SQLiteSessionStore) MarkAcknowledged(ctx context.Context, alertID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alert_actions (alert_id, action, updated_at) VALUES (?, 'acknowledged', ?)
		 ON CONFLICT(alert_id) DO UPDATE SET action = 'acknowledged', updated_at = excluded.updated_at
		 WHERE alert_actions.action != 'dismissed'`,
		alertID, time.Now(),
	)
	return err
}

// MarkDismissed records a dismissed alert. Dismissal is terminal.
func (s *SQLiteSessionStore) MarkDismissed(ctx context.Context, alertID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alert_actions (alert_id, action, updated_at) VALUES (?, 'dismissed', ?)
		 ON CONFLICT(alert_id) DO UPDATE SET action = 'dismissed', updated_at = excluded.updated_at`,
		alertID, time.Now(),
	)
	return err
}

// AlertState returns acknowledged and dismissed alert ids.
func (s *SQLiteSessionStore) AlertState(ctx context.Context) (acknowledged, dismissed []string, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alert_id, action FROM alert_actions`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, action string
		if err := rows.Scan(&id, &action); err != nil {
			return nil, nil, err
		}
		switch action {
		case "acknowledged":
			acknowledged = append(acknowledged, id)
		case "dismissed":
			dismissed = append(dismissed, id)
		}
	}
	return acknowledged, dismissed, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}
