// Package store implements the durable save/load collaborator for schedule
// days and habits, backed by SQLite.
//
// The in-memory services remain the source of truth while the process runs;
// this store is written through after every mutation and read once at
// startup to rehydrate them. Payloads are stored as JSON documents keyed by
// date or habit id; the services never query inside them.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dvergara/daykeeper/internal/habit"
	"github.com/dvergara/daykeeper/internal/schedule"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".daykeeper")}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed persistence engine.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "daykeeper.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schedule_days (
			date       TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS habits (
			id         TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Schedule days ───────────────────────────────────────────────────────────

// SaveDay upserts one schedule day keyed by its date.
func (s *Store) SaveDay(day *schedule.Day) error {
	payload, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("store: encode day %s: %w", day.Date, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO schedule_days (date, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, string(day.Date), string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: save day %s: %w", day.Date, err)
	}
	return nil
}

// LoadDays returns every persisted schedule day.
func (s *Store) LoadDays() ([]*schedule.Day, error) {
	rows, err := s.db.Query(`SELECT payload FROM schedule_days ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("store: load days: %w", err)
	}
	defer rows.Close()

	var days []*schedule.Day
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("store: scan day: %w", err)
		}
		var day schedule.Day
		if err := json.Unmarshal([]byte(payload), &day); err != nil {
			return nil, fmt.Errorf("store: decode day: %w", err)
		}
		days = append(days, &day)
	}
	return days, rows.Err()
}

// ─── Habits ──────────────────────────────────────────────────────────────────

// SaveHabit upserts one habit keyed by its id.
func (s *Store) SaveHabit(h *habit.Habit) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("store: encode habit %q: %w", h.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO habits (id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, h.ID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: save habit %q: %w", h.ID, err)
	}
	return nil
}

// LoadHabits returns every persisted habit.
func (s *Store) LoadHabits() ([]*habit.Habit, error) {
	rows, err := s.db.Query(`SELECT payload FROM habits ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: load habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("store: scan habit: %w", err)
		}
		var h habit.Habit
		if err := json.Unmarshal([]byte(payload), &h); err != nil {
			return nil, fmt.Errorf("store: decode habit: %w", err)
		}
		habits = append(habits, &h)
	}
	return habits, rows.Err()
}
