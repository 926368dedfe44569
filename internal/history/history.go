// Package history keeps a local ledger of front-end mutations so a deploy
// can be audited after the fact, including dry-run simulations.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Event is one recorded mutation (or simulated mutation).
type Event struct {
	AppID    string
	Action   string // "create" / "delete" / "modify"
	Resource string // "load_balancer" / "target_group" / "listener"
	Detail   string
	DryRun   bool
	At       time.Time
}

// Recorder receives every mutation the reconciler performs.
type Recorder interface {
	Record(ev Event) error
}

// Nop discards events. Used when history is disabled.
type Nop struct{}

func (Nop) Record(Event) error { return nil }

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	app_id TEXT NOT NULL,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	dry_run INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_app_id ON events (app_id, created_at);
`

// Ledger is a sqlite-backed Recorder.
type Ledger struct {
	db *sql.DB
}

// DefaultPath returns ~/.hako/history.db, or "" when the home directory
// cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".hako", "history.db")
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Record(ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO events (app_id, action, resource, detail, dry_run, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.AppID, ev.Action, ev.Resource, ev.Detail, boolToInt(ev.DryRun), at.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording history event: %w", err)
	}
	return nil
}

// Recent returns the latest events for an app, newest first.
func (l *Ledger) Recent(appID string, limit int) ([]Event, error) {
	rows, err := l.db.Query(
		`SELECT app_id, action, resource, detail, dry_run, created_at
		 FROM events WHERE app_id = ? ORDER BY id DESC LIMIT ?`,
		appID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var dryRun int
		var createdAt string
		if err := rows.Scan(&ev.AppID, &ev.Action, &ev.Resource, &ev.Detail, &dryRun, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		ev.DryRun = dryRun != 0
		ev.At, _ = time.Parse(time.RFC3339, createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
