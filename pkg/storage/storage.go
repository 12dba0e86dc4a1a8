// Package storage is the backend database: issued kits, the meal catalog and
// every save request received.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kittrack/kittrack/pkg/menu"
	"github.com/kittrack/kittrack/pkg/tracking"
	_ "modernc.org/sqlite"
)

// TestKitID is always present so the client can be tried without issuing a
// kit first.
const TestKitID = "TEST123456"

// Times are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// ErrUnknownKit is returned when saving for a kit that was never issued.
var ErrUnknownKit = errors.New("unknown kit")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS kits (
  id         INTEGER PRIMARY KEY,
  kit_id     TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS menu_items (
  id        INTEGER PRIMARY KEY,
  meal_type TEXT NOT NULL CHECK (meal_type IN ('breakfast','lunch','dinner')),
  category  TEXT NOT NULL,
  item      TEXT NOT NULL,
  position  INTEGER NOT NULL,
  UNIQUE(meal_type, category, item)
);
CREATE INDEX IF NOT EXISTS idx_menu_meal ON menu_items(meal_type, position);
CREATE TABLE IF NOT EXISTS submissions (
  id         INTEGER PRIMARY KEY,
  kind       TEXT NOT NULL CHECK (kind IN ('tracking','meal','stool','mood')),
  kit_id     TEXT NOT NULL,
  payload    TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_kit ON submissions(kit_id, created_at);
    `); err != nil {
		db.Close()
		return nil, err
	}

	d := &DB{sql: db}
	if err := d.seed(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding database: %w", err)
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func (d *DB) seed(ctx context.Context) error {
	if _, err := d.sql.ExecContext(ctx, "INSERT OR IGNORE INTO kits(kit_id, created_at) VALUES(?, ?)", TestKitID, formatTime(time.Now())); err != nil {
		return err
	}

	var n int
	if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, meal := range tracking.MealTypes() {
		if err := d.SetMenu(ctx, meal, DefaultMenu[meal]); err != nil {
			return err
		}
	}
	return nil
}

// GenerateKit issues a new random kit id.
func (d *DB) GenerateKit(ctx context.Context) (string, error) {
	kitID := uuid.NewString()
	if _, err := d.sql.ExecContext(ctx, "INSERT INTO kits(kit_id, created_at) VALUES(?, ?)", kitID, formatTime(time.Now())); err != nil {
		return "", err
	}
	return kitID, nil
}

func (d *DB) KitExists(ctx context.Context, kitID string) (bool, error) {
	var one int
	err := d.sql.QueryRowContext(ctx, "SELECT 1 FROM kits WHERE kit_id = ?", NormalizeKitID(kitID)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) ListKits(ctx context.Context) ([]Kit, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT kit_id, created_at FROM kits ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Kit
	for rows.Next() {
		var k Kit
		var created string
		if err := rows.Scan(&k.KitID, &created); err != nil {
			return nil, err
		}
		k.CreatedAt = parseTime(created)
		out = append(out, k)
	}
	return out, rows.Err()
}

// MenuFor returns the catalog of meal with categories and items in
// insertion order.
func (d *DB) MenuFor(ctx context.Context, meal tracking.MealType) ([]menu.Category, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT category, item FROM menu_items WHERE meal_type = ? ORDER BY position", string(meal))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []menu.Category
	index := map[string]int{}
	for rows.Next() {
		var cat, item string
		if err := rows.Scan(&cat, &item); err != nil {
			return nil, err
		}
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, menu.Category{Name: cat})
		}
		out[i].Items = append(out[i].Items, item)
	}
	return out, rows.Err()
}

// SetMenu replaces the whole catalog of meal.
func (d *DB) SetMenu(ctx context.Context, meal tracking.MealType, categories []menu.Category) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM menu_items WHERE meal_type = ?", string(meal)); err != nil {
		return err
	}
	pos := 0
	for _, c := range normalizeCatalog(categories) {
		for _, item := range c.Items {
			if _, err = tx.ExecContext(ctx, "INSERT INTO menu_items(meal_type, category, item, position) VALUES(?,?,?,?)", string(meal), c.Name, item, pos); err != nil {
				return err
			}
			pos++
		}
	}
	return tx.Commit()
}

// SaveSubmission stores payload for an issued kit.
func (d *DB) SaveSubmission(ctx context.Context, kind Kind, kitID string, payload []byte, at time.Time) (int64, error) {
	kitID = NormalizeKitID(kitID)
	ok, err := d.KitExists(ctx, kitID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnknownKit
	}
	if !json.Valid(payload) {
		return 0, fmt.Errorf("payload is not valid JSON")
	}

	res, err := d.sql.ExecContext(ctx, "INSERT INTO submissions(kind, kit_id, payload, created_at) VALUES(?,?,?,?)", string(kind), kitID, string(payload), formatTime(at))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSubmissions returns the submissions of a kit, oldest first. An empty
// kind matches every kind.
func (d *DB) ListSubmissions(ctx context.Context, kitID string, kind Kind) ([]Submission, error) {
	q := "SELECT id, kind, kit_id, payload, created_at FROM submissions WHERE kit_id = ?"
	args := []interface{}{NormalizeKitID(kitID)}
	if kind != "" {
		q += " AND kind = ?"
		args = append(args, string(kind))
	}
	q += " ORDER BY created_at, id"

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var s Submission
		var kindStr, payload, created string
		if err := rows.Scan(&s.ID, &kindStr, &s.KitID, &payload, &created); err != nil {
			return nil, err
		}
		s.Kind = Kind(kindStr)
		s.Payload = json.RawMessage(payload)
		s.CreatedAt = parseTime(created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// MoodSeries extracts one point per tracking or mood submission of a kit,
// ordered by the date the user reported.
func (d *DB) MoodSeries(ctx context.Context, kitID string) ([]tracking.MoodPoint, error) {
	subs, err := d.ListSubmissions(ctx, kitID, "")
	if err != nil {
		return nil, err
	}

	var points []tracking.MoodPoint
	for _, s := range subs {
		if s.Kind != KindTracking && s.Kind != KindMood {
			continue
		}
		var body struct {
			Date time.Time      `json:"date"`
			Mood *tracking.Mood `json:"mood"`
		}
		if err := json.Unmarshal(s.Payload, &body); err != nil || body.Mood == nil || body.Mood.Level() == 0 {
			continue
		}
		date := body.Date
		if date.IsZero() {
			date = s.CreatedAt
		}
		points = append(points, tracking.MoodPoint{Date: date, Mood: body.Mood.Level()})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (d *DB) CountKits(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM kits").Scan(&n)
	return n, err
}

func (d *DB) GetStats(ctx context.Context) ([]KindStats, error) {
	query := `
		SELECT
			kind,
			COUNT(DISTINCT kit_id),
			COUNT(*)
		FROM
			submissions
		GROUP BY
			kind
		ORDER BY
			kind;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var s KindStats
		var kind string
		if err := rows.Scan(&kind, &s.KitCount, &s.SubmitCount); err != nil {
			return nil, err
		}
		s.Kind = Kind(kind)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
