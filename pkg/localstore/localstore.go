// Package localstore is the process-wide key/value store kept on the
// user's machine: the cached kit id, the one-per-day mood gate and the
// append-only log of submitted records.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kittrack/kittrack/internal/utils"
	"github.com/kittrack/kittrack/pkg/tracking"
	_ "modernc.org/sqlite"
)

const (
	KeyKitID             = "kitId"
	KeyHealthData        = "healthData"
	KeyMoodSubmittedDate = "moodSubmittedDate"

	dateLayout = "2006-01-02"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

type Store struct {
	sql  *sql.DB
	lock *utils.StoreLock
}

func Open(path string) (*Store, error) {
	absPath, err := utils.StorePath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dsn := "file:" + absPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS health_data (
  id          INTEGER PRIMARY KEY,
  recorded_at DATETIME NOT NULL,
  kit_id      TEXT NOT NULL,
  record      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_health_data_time ON health_data(recorded_at);
    `); err != nil {
		db.Close()
		return nil, err
	}

	lock, err := utils.NewStoreLock(absPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{sql: db, lock: lock}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.sql.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.lock.Do(ctx, func() error {
		_, err := s.sql.ExecContext(ctx, `INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
		return err
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.lock.Do(ctx, func() error {
		if key == KeyHealthData {
			_, err := s.sql.ExecContext(ctx, "DELETE FROM health_data")
			return err
		}
		_, err := s.sql.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
		return err
	})
}

// KitID returns the cached kit id, or "" when none is stored.
func (s *Store) KitID(ctx context.Context) (string, error) {
	v, err := s.Get(ctx, KeyKitID)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *Store) SetKitID(ctx context.Context, kitID string) error {
	return s.Set(ctx, KeyKitID, kitID)
}

// AppendRecord adds rec to the health data log. Records are never updated.
func (s *Store) AppendRecord(ctx context.Context, rec tracking.TrackingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	recordedAt := rec.Date
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return s.lock.Do(ctx, func() error {
		_, err := s.sql.ExecContext(ctx, "INSERT INTO health_data(recorded_at, kit_id, record) VALUES(?, ?, ?)", recordedAt.UTC(), rec.KitID, string(data))
		return err
	})
}

// Records returns the health data log, oldest first.
func (s *Store) Records(ctx context.Context) ([]tracking.TrackingRecord, error) {
	rows, err := s.sql.QueryContext(ctx, "SELECT record FROM health_data ORDER BY recorded_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tracking.TrackingRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rec tracking.TrackingRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode stored record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MoodSubmittedToday reports whether the mood gate is closed for now's
// calendar date.
func (s *Store) MoodSubmittedToday(ctx context.Context, now time.Time) (bool, error) {
	v, err := s.Get(ctx, KeyMoodSubmittedDate)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == now.Format(dateLayout), nil
}

func (s *Store) MarkMoodSubmitted(ctx context.Context, now time.Time) error {
	return s.Set(ctx, KeyMoodSubmittedDate, now.Format(dateLayout))
}
