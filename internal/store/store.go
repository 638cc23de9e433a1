// Package store provides the SQLite-backed local task cache. The
// widget paints from it on startup, before the first network fetch
// lands, and it resolves project ids for one-shot completion.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tickdeck/internal/models"
)

// Store provides access to the tickdeck SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for concurrent readers; SQLite allows one writer.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT,
		project_id TEXT,
		priority INTEGER NOT NULL DEFAULT 0,
		due DATETIME,
		due_zone TEXT,
		created DATETIME,
		tags TEXT
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveTasks replaces the cached task set in one transaction. A failed
// save leaves the previous set intact.
func (s *Store) SaveTasks(tasks []models.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for _, t := range tasks {
		var due sql.NullTime
		var dueZone sql.NullString
		if t.HasDue() {
			due = sql.NullTime{Time: t.Due.UTC(), Valid: true}
			dueZone = sql.NullString{String: t.DueZone.String(), Valid: true}
		}
		var tagsJSON sql.NullString
		if len(t.Tags) > 0 {
			data, _ := json.Marshal(t.Tags)
			tagsJSON = sql.NullString{String: string(data), Valid: true}
		}

		_, err := tx.Exec(
			`INSERT INTO tasks (id, title, content, project_id, priority, due, due_zone, created, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Content, t.ProjectID, int(t.Priority), due, dueZone, t.Created.UTC(), tagsJSON,
		)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('refreshed_at', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		now,
	); err != nil {
		return fmt.Errorf("record refresh time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadTasks returns the cached task set. A cached zone that no longer
// loads drops the due date rather than the task, keeping the
// due/zone pairing invariant.
func (s *Store) LoadTasks() ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, title, content, project_id, priority, due, due_zone, created, tags FROM tasks ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var content, projectID, dueZone, tagsJSON sql.NullString
		var due, created sql.NullTime
		var priority int

		if err := rows.Scan(&t.ID, &t.Title, &content, &projectID, &priority, &due, &dueZone, &created, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Content = content.String
		t.ProjectID = projectID.String
		t.Priority = models.Priority(priority)
		if created.Valid {
			t.Created = created.Time
		}
		if due.Valid && dueZone.Valid {
			if loc, err := time.LoadLocation(dueZone.String); err == nil {
				localized := due.Time.In(loc)
				t.Due = &localized
				t.DueZone = loc
			}
		}
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &t.Tags)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ProjectIDForTask resolves the project a cached task belongs to,
// needed to address the completion endpoint.
func (s *Store) ProjectIDForTask(taskID string) (string, error) {
	var projectID sql.NullString
	err := s.db.QueryRow(`SELECT project_id FROM tasks WHERE id = ?`, taskID).Scan(&projectID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("task %q not in local cache", taskID)
	}
	if err != nil {
		return "", fmt.Errorf("query project id: %w", err)
	}
	return projectID.String, nil
}

// LastRefreshedAt returns when the cache was last replaced, or the
// zero time for a fresh database.
func (s *Store) LastRefreshedAt() (time.Time, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'refreshed_at'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query refresh time: %w", err)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse refresh time: %w", err)
	}
	return t, nil
}
