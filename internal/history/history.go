// Package history keeps a local SQLite log of rendered posters. It backs the
// occasion and location autocomplete and remembers geocoded locations so
// repeat renders work offline.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"starmap/internal/geocode"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS renders (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	occasion   TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	date       TEXT NOT NULL,
	mode       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS renders_created ON renders(created_at);
CREATE TABLE IF NOT EXISTS locations (
	query     TEXT PRIMARY KEY,
	latitude  REAL NOT NULL,
	longitude REAL NOT NULL,
	label     TEXT NOT NULL DEFAULT '',
	resolved  TEXT NOT NULL
);
`

// Entry is one rendered poster.
type Entry struct {
	ID        int64
	Occasion  string
	Location  string
	Latitude  float64
	Longitude float64
	Date      time.Time
	Mode      string
	CreatedAt time.Time
}

// Field selects which column Suggest completes.
type Field int

const (
	Occasions Field = iota
	Locations
)

func (f Field) column() string {
	if f == Locations {
		return "location"
	}
	return "occasion"
}

// Store is a history database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "starmap", "history.db"), nil
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// One connection serializes writers and keeps :memory: a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA busy_timeout=5000;", "PRAGMA synchronous=NORMAL;"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL;")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			log.Printf("history: %s skipped: %v", strings.TrimSuffix(p, ";"), err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO renders (occasion, location, latitude, longitude, date, mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(e.Occasion), strings.TrimSpace(e.Location), e.Latitude, e.Longitude,
		e.Date.Format(time.RFC3339), e.Mode, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to record render: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, occasion, location, latitude, longitude, date, mode, created_at
		 FROM renders ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var date, created string
		if err := rows.Scan(&e.ID, &e.Occasion, &e.Location, &e.Latitude, &e.Longitude, &date, &e.Mode, &created); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Date, _ = time.Parse(time.RFC3339, date)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Suggest returns distinct previous values of field starting with prefix
// (case-insensitive), most used first, then most recent.
func (s *Store) Suggest(ctx context.Context, field Field, prefix string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 8
	}
	col := field.column()
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %[1]s FROM renders
		 WHERE %[1]s <> '' AND %[1]s LIKE ? ESCAPE '\'
		 GROUP BY %[1]s
		 ORDER BY COUNT(*) DESC, MAX(created_at) DESC
		 LIMIT ?`, col),
		escapeLike(strings.TrimSpace(prefix))+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// RememberLocation caches a geocoded query.
func (s *Store) RememberLocation(ctx context.Context, query string, loc geocode.Location) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (query, latitude, longitude, label, resolved) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(query) DO UPDATE SET latitude = excluded.latitude, longitude = excluded.longitude,
		   label = excluded.label, resolved = excluded.resolved`,
		normalizeQuery(query), loc.Latitude, loc.Longitude, loc.Label, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to remember location: %w", err)
	}
	return nil
}

// LookupLocation returns a cached geocode result. ok is false on a miss.
func (s *Store) LookupLocation(ctx context.Context, query string) (loc geocode.Location, ok bool, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, label FROM locations WHERE query = ?`, normalizeQuery(query)).
		Scan(&loc.Latitude, &loc.Longitude, &loc.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return geocode.Location{}, false, nil
	}
	if err != nil {
		return geocode.Location{}, false, fmt.Errorf("failed to look up location: %w", err)
	}
	return loc, true, nil
}

// Clear deletes all history and cached locations.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM renders; DELETE FROM locations;`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// CachingResolver resolves locations through the store before asking the
// network geocoder, and remembers network answers.
type CachingResolver struct {
	Store    *Store
	Geocoder interface {
		Resolve(ctx context.Context, query string) (geocode.Location, error)
	}
}

// Resolve implements the geocoder lookup with a local cache in front.
func (r CachingResolver) Resolve(ctx context.Context, query string) (geocode.Location, error) {
	if _, ok, _ := geocode.ParseLatLon(query); ok {
		return r.Geocoder.Resolve(ctx, query)
	}
	if loc, ok, err := r.Store.LookupLocation(ctx, query); err == nil && ok {
		return loc, nil
	}
	loc, err := r.Geocoder.Resolve(ctx, query)
	if err != nil {
		return loc, err
	}
	if err := r.Store.RememberLocation(ctx, query, loc); err != nil {
		log.Printf("history: %v", err)
	}
	return loc, nil
}
