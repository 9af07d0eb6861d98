// Package store is the local SQLite cache of synced activities, the OAuth
// token and saved filters.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/robert-malhotra/go-strava-client/pkg/activity"
	"github.com/robert-malhotra/go-strava-client/pkg/client"
	"github.com/robert-malhotra/go-strava-client/pkg/filter"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreClosed is returned by every method after Close.
	ErrStoreClosed = errors.New("store is closed")
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY,
	start_date TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	record BLOB NOT NULL,
	raw BLOB,
	synced_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date);

CREATE TABLE IF NOT EXISTS tokens (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	athlete_id INTEGER NOT NULL,
	athlete_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_filters (
	name TEXT PRIMARY KEY,
	expr TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store persists data to SQLite. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.RWMutex
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs writes at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("init codec: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// Close releases the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// -----------------------------------------------------------------------------
// Activities
// -----------------------------------------------------------------------------

// UpsertActivities inserts or replaces activities in one transaction and
// returns how many rows were written.
func (s *Store) UpsertActivities(ctx context.Context, list []*activity.Activity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	if len(list) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO activities (id, start_date, name, type, record, raw, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			name = excluded.name,
			type = excluded.type,
			record = excluded.record,
			raw = excluded.raw,
			synced_at = excluded.synced_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, a := range list {
		if a == nil {
			continue
		}
		record, err := json.Marshal(a)
		if err != nil {
			return 0, fmt.Errorf("encode activity %d: %w", a.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			a.ID, formatTime(a.StartDate), a.Name, a.Type,
			compress(record), compress(a.Raw), now,
		); err != nil {
			return 0, fmt.Errorf("upsert activity %d: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit activities: %w", err)
	}

	n := 0
	for _, a := range list {
		if a != nil {
			n++
		}
	}
	s.logger.Debug("stored activities", "count", n)
	return n, nil
}

// Activities returns every stored activity, newest first.
func (s *Store) Activities(ctx context.Context) ([]activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record, raw FROM activities
		ORDER BY start_date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var list []activity.Activity
	for rows.Next() {
		var record, raw []byte
		if err := rows.Scan(&record, &raw); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a, err := decodeActivity(record, raw)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return list, nil
}

// Activity returns one stored activity.
func (s *Store) Activity(ctx context.Context, id int64) (activity.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return activity.Activity{}, ErrStoreClosed
	}

	var record, raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT record, raw FROM activities WHERE id = ?`, id).Scan(&record, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return activity.Activity{}, ErrNotFound
	}
	if err != nil {
		return activity.Activity{}, fmt.Errorf("load activity %d: %w", id, err)
	}
	return decodeActivity(record, raw)
}

// LatestStart returns the start date of the newest stored activity, or the
// zero time when the store is empty.
func (s *Store) LatestStart(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return time.Time{}, ErrStoreClosed
	}

	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(start_date) FROM activities`).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("latest activity: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, latest.String)
}

// CountActivities returns the number of stored activities.
func (s *Store) CountActivities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

func decodeActivity(record, raw []byte) (activity.Activity, error) {
	var a activity.Activity
	data, err := decompress(record)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decode activity: %w", err)
	}
	if a.Raw, err = decompress(raw); err != nil {
		return a, err
	}
	return a, nil
}

// formatTime keeps a fixed width so text order is chronological.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// -----------------------------------------------------------------------------
// OAuth token
// -----------------------------------------------------------------------------

// SaveToken replaces the stored token.
func (s *Store) SaveToken(ctx context.Context, tok *client.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if tok == nil {
		return errors.New("save token: nil token")
	}

	var expires int64
	if !tok.ExpiresAt.IsZero() {
		expires = tok.ExpiresAt.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (id, access_token, refresh_token, expires_at, athlete_id, athlete_name)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			athlete_id = excluded.athlete_id,
			athlete_name = excluded.athlete_name
	`, tok.AccessToken, tok.RefreshToken, expires, tok.AthleteID, tok.AthleteName)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	s.logger.Debug("stored token", "athlete", tok.AthleteID, "expires_at", tok.ExpiresAt)
	return nil
}

// LoadToken returns the stored token or ErrNotFound.
func (s *Store) LoadToken(ctx context.Context) (*client.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var tok client.Token
	var expires int64
	err := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, expires_at, athlete_id, athlete_name
		FROM tokens WHERE id = 1
	`).Scan(&tok.AccessToken, &tok.RefreshToken, &expires, &tok.AthleteID, &tok.AthleteName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if expires > 0 {
		tok.ExpiresAt = time.Unix(expires, 0).UTC()
	}
	return &tok, nil
}

// DeleteToken forgets the stored token.
func (s *Store) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tokens`); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Saved filters
// -----------------------------------------------------------------------------

// SavedFilter is a named filter expression.
type SavedFilter struct {
	Name      string
	Expr      string
	UpdatedAt time.Time
}

// SaveFilter stores expr under name, replacing any previous expression.
// The expression must parse.
func (s *Store) SaveFilter(ctx context.Context, name, expr string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("filter name cannot be empty")
	}
	if _, err := filter.Parse(expr); err != nil {
		return fmt.Errorf("invalid filter %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_filters (name, expr, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET expr = excluded.expr, updated_at = excluded.updated_at
	`, name, expr, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save filter %q: %w", name, err)
	}
	return nil
}

// Filter returns one saved filter or ErrNotFound.
func (s *Store) Filter(ctx context.Context, name string) (SavedFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return SavedFilter{}, ErrStoreClosed
	}

	f := SavedFilter{Name: name}
	var updated string
	err := s.db.QueryRowContext(ctx, `SELECT expr, updated_at FROM saved_filters WHERE name = ?`, name).Scan(&f.Expr, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedFilter{}, ErrNotFound
	}
	if err != nil {
		return SavedFilter{}, fmt.Errorf("load filter %q: %w", name, err)
	}
	f.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return f, nil
}

// Filters returns every saved filter ordered by name.
func (s *Store) Filters(ctx context.Context) ([]SavedFilter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, expr, updated_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	var out []SavedFilter
	for rows.Next() {
		var f SavedFilter
		var updated string
		if err := rows.Scan(&f.Name, &f.Expr, &updated); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		f.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return out, nil
}

// DeleteFilter removes a saved filter. Deleting a missing name returns
// ErrNotFound.
func (s *Store) DeleteFilter(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete filter %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
